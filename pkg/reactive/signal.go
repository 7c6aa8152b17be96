package reactive

import (
	"fmt"
	"sync"
)

// Ref is a reactive cell whose value can be read and written without
// knowing its type. Render contexts unwrap Refs found in component state.
type Ref interface {
	RefValue() any
	SetRefValue(v any) error
}

// Signal is a reactive value container.
type Signal[T any] struct {
	dep   dep
	id    uint64
	mu    sync.RWMutex
	value T
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// ID returns the signal's unique identifier.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	s.dep.track()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	if s.equals(s.value, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	s.mu.Unlock()

	s.dep.trigger()
}

// Update applies fn to the current value and sets the result.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.Peek()))
}

// WithEquals replaces the change check used by Set.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// RefValue implements Ref.
func (s *Signal[T]) RefValue() any {
	return s.Get()
}

// SetRefValue implements Ref.
func (s *Signal[T]) SetRefValue(v any) error {
	tv, ok := v.(T)
	if !ok {
		var zero T
		return fmt.Errorf("reactive: cannot assign %T to Signal[%T]", v, zero)
	}
	s.Set(tv)
	return nil
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return SameValue(any(a), any(b))
}
