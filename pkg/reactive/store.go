package reactive

import (
	"errors"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// ErrReadonly is returned when writing through a read-only view.
var ErrReadonly = errors.New("reactive: store is read-only")

// readonlyWarn reports writes through a read-only view made with Set or
// Delete. It is replaced by SetReadonlyWarning.
var readonlyWarn = func(key string) {
	slog.Warn("set operation on key failed: target is readonly", "key", key)
}

// SetReadonlyWarning replaces the handler called when Set or Delete is
// attempted on a read-only store.
func SetReadonlyWarning(fn func(key string)) {
	if fn == nil {
		fn = func(string) {}
	}
	readonlyWarn = fn
}

// Store is a reactive map keyed by string. Each key is tracked on its own;
// adding or removing a key additionally notifies readers of Keys and Len.
//
// A deep store wraps nested map[string]any values in child stores on read.
// A shallow store returns nested values as stored.
type Store struct {
	id       uint64
	shallow  bool
	readonly bool

	// target is set on read-only views; all reads go through it.
	target *Store

	mu       sync.RWMutex
	raw      map[string]any
	deps     map[string]*dep
	iterate  dep
	children map[string]*Store
}

// Reactive creates a deep store over m. The map is owned by the store
// afterwards; a nil map starts empty.
func Reactive(m map[string]any) *Store {
	return newStore(m, false)
}

// ShallowReactive creates a store that tracks only its top-level keys.
func ShallowReactive(m map[string]any) *Store {
	return newStore(m, true)
}

// ReadonlyView returns a view of s that tracks reads like s but rejects
// writes.
func ReadonlyView(s *Store) *Store {
	if s.readonly {
		return s
	}
	return &Store{
		id:       nextID(),
		shallow:  s.shallow,
		readonly: true,
		target:   s,
	}
}

func newStore(m map[string]any, shallow bool) *Store {
	if m == nil {
		m = make(map[string]any)
	}
	return &Store{
		id:      nextID(),
		shallow: shallow,
		raw:     m,
		deps:    make(map[string]*dep),
	}
}

// ID returns the store's unique identifier.
func (s *Store) ID() uint64 { return s.id }

// IsReadonly reports whether writes are rejected.
func (s *Store) IsReadonly() bool { return s.readonly }

// IsShallow reports whether nested maps are left unwrapped.
func (s *Store) IsShallow() bool { return s.shallow }

// Get returns the value for key, or nil.
func (s *Store) Get(key string) any {
	v, _ := s.Lookup(key)
	return v
}

// Lookup returns the value for key and whether it is present.
func (s *Store) Lookup(key string) (any, bool) {
	if s.target != nil {
		return s.target.Lookup(key)
	}

	s.depFor(key).track()

	s.mu.RLock()
	v, ok := s.raw[key]
	s.mu.RUnlock()
	if !ok || s.shallow {
		return v, ok
	}

	if m, isMap := v.(map[string]any); isMap {
		return s.child(key, m), true
	}
	return v, true
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Set writes key and reports whether the stored value changed. On a
// read-only view it reports a warning and returns false.
func (s *Store) Set(key string, value any) bool {
	changed, err := s.set(key, value)
	if err != nil {
		readonlyWarn(key)
	}
	return changed
}

// TrySet is like Set but returns ErrReadonly instead of warning.
func (s *Store) TrySet(key string, value any) (bool, error) {
	return s.set(key, value)
}

func (s *Store) set(key string, value any) (bool, error) {
	if s.readonly {
		return false, ErrReadonly
	}
	if st, ok := value.(*Store); ok {
		value = st.underlying()
	}

	s.mu.Lock()
	old, had := s.raw[key]
	if had && SameValue(old, value) {
		s.mu.Unlock()
		return false, nil
	}
	s.raw[key] = value
	delete(s.children, key)
	d := s.deps[key]
	s.mu.Unlock()

	if d != nil {
		d.trigger()
	}
	if !had {
		s.iterate.trigger()
	}
	return true, nil
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	if s.readonly {
		readonlyWarn(key)
		return false
	}

	s.mu.Lock()
	_, had := s.raw[key]
	if !had {
		s.mu.Unlock()
		return false
	}
	delete(s.raw, key)
	delete(s.children, key)
	d := s.deps[key]
	s.mu.Unlock()

	if d != nil {
		d.trigger()
	}
	s.iterate.trigger()
	return true
}

// Keys returns the sorted key set and subscribes to key additions and
// removals.
func (s *Store) Keys() []string {
	if s.target != nil {
		return s.target.Keys()
	}
	s.iterate.track()

	s.mu.RLock()
	keys := make([]string, 0, len(s.raw))
	for k := range s.raw {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of keys and subscribes like Keys.
func (s *Store) Len() int {
	if s.target != nil {
		return s.target.Len()
	}
	s.iterate.track()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.raw)
}

// Raw returns a shallow copy of the underlying map without tracking.
func (s *Store) Raw() map[string]any {
	if s.target != nil {
		return s.target.Raw()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.raw))
	for k, v := range s.raw {
		out[k] = v
	}
	return out
}

// Peek returns the value for key without tracking or wrapping.
func (s *Store) Peek(key string) any {
	if s.target != nil {
		return s.target.Peek(key)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw[key]
}

func (s *Store) underlying() map[string]any {
	if s.target != nil {
		return s.target.underlying()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

func (s *Store) depFor(key string) *dep {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deps[key]
	if !ok {
		d = &dep{}
		s.deps[key] = d
	}
	return d
}

// child returns the cached store wrapping m, replacing the cache entry if
// the map under key was swapped.
func (s *Store) child(key string, m map[string]any) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.children[key]; ok && sameMap(c.raw, m) {
		return c
	}
	if s.children == nil {
		s.children = make(map[string]*Store)
	}
	c := newStore(m, false)
	s.children[key] = c
	return c
}

func sameMap(a, b map[string]any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
