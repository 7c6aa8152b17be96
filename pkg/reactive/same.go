package reactive

import "reflect"

// SameValue reports whether writing b over a is a no-op.
//
// Scalars compare by value with NaN equal to itself. Maps, slices,
// pointers and channels compare by identity. Functions are never the same
// unless both are nil, since distinct closures cannot be told apart.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && (av == bv || (av != av && bv != bv))
	case float32:
		bv, ok := b.(float32)
		return ok && (av == bv || (av != av && bv != bv))
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return safeEqual(a, b)
}

// safeEqual compares two values of a comparable type. Structs holding
// uncomparable dynamic values panic on ==; those fall back to DeepEqual.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}
