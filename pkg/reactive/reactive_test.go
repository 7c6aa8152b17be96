package reactive

import (
	"math"
	"sync"
	"testing"
)

type testListener struct {
	id         uint64
	dirtyCount int
	mu         sync.Mutex
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirtyCount++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 {
	return l.id
}

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirtyCount
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	count := NewSignal(42)

	listener := newTestListener()
	WithListener(listener, func() {
		if v := count.Peek(); v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	// Same value is not a change.
	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("equal Set notified; count = %d", listener.getDirtyCount())
	}
}

func TestSignalNaN(t *testing.T) {
	v := NewSignal(math.NaN())
	listener := newTestListener()
	WithListener(listener, func() { _ = v.Get() })

	v.Set(math.NaN())
	if listener.getDirtyCount() != 0 {
		t.Errorf("NaN over NaN notified %d times, want 0", listener.getDirtyCount())
	}
}

func TestSignalRef(t *testing.T) {
	s := NewSignal("a")
	var r Ref = s
	if err := r.SetRefValue("b"); err != nil {
		t.Fatalf("SetRefValue() error = %v", err)
	}
	if r.RefValue() != "b" {
		t.Errorf("RefValue() = %v, want b", r.RefValue())
	}
	if err := r.SetRefValue(3); err == nil {
		t.Error("SetRefValue(int) on Signal[string] should fail")
	}
}

func TestEffectRerunsOnChange(t *testing.T) {
	count := NewSignal(0)
	var seen []int

	e := NewEffect(func() {
		seen = append(seen, count.Get())
	})

	count.Set(1)
	count.Set(2)

	if len(seen) != 3 || seen[2] != 2 {
		t.Errorf("seen = %v, want [0 1 2]", seen)
	}

	e.Stop()
	count.Set(3)
	if len(seen) != 3 {
		t.Errorf("stopped effect ran; seen = %v", seen)
	}
	if e.Active() {
		t.Error("Active() = true after Stop")
	}
}

func TestEffectDropsStaleDependencies(t *testing.T) {
	useA := NewSignal(true)
	a := NewSignal(0)
	b := NewSignal(0)
	runs := 0

	NewEffect(func() {
		runs++
		if useA.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
	})

	useA.Set(false)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}

	a.Set(1)
	if runs != 2 {
		t.Errorf("write to dropped dependency re-ran effect; runs = %d", runs)
	}
	b.Set(1)
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
}

func TestEffectSelfWriteDoesNotRecurse(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	NewEffect(func() {
		runs++
		count.Set(count.Get() + 1)
	})

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if count.Peek() != 1 {
		t.Errorf("count = %d, want 1", count.Peek())
	}
}

func TestEffectScheduler(t *testing.T) {
	count := NewSignal(0)
	var queued []*Effect
	runs := 0

	e := NewEffect(func() {
		runs++
		_ = count.Get()
	}, WithScheduler(func(e *Effect) {
		queued = append(queued, e)
	}))

	count.Set(1)
	count.Set(2)

	if runs != 1 {
		t.Errorf("scheduled effect ran inline; runs = %d", runs)
	}
	if len(queued) != 2 || queued[0] != e {
		t.Fatalf("queued = %d, want 2 of the same effect", len(queued))
	}

	queued[0].Run()
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestEffectLazy(t *testing.T) {
	runs := 0
	e := NewEffect(func() { runs++ }, WithLazy())
	if runs != 0 {
		t.Errorf("lazy effect ran on creation")
	}
	e.Run()
	if runs != 1 || e.Runs() != 1 {
		t.Errorf("runs = %d, Runs() = %d, want 1", runs, e.Runs())
	}
}

func TestEffectPanicIsRecovered(t *testing.T) {
	trigger := NewSignal(0)
	var recovered any

	e := NewEffect(func() {
		if trigger.Get() > 0 {
			panic("boom")
		}
	}, WithErrorHandler(func(_ *Effect, r any, _ []byte) {
		recovered = r
	}))

	trigger.Set(1)
	if recovered != "boom" {
		t.Errorf("recovered = %v, want boom", recovered)
	}
	if !e.Active() {
		t.Error("effect stopped after panic")
	}
	if Tracking() {
		t.Error("listener not restored after panic")
	}
}

func TestBatchDeduplicates(t *testing.T) {
	first := NewSignal("a")
	last := NewSignal("b")
	runs := 0

	NewEffect(func() {
		runs++
		_ = first.Get() + last.Get()
	})

	Batch(func() {
		first.Set("x")
		last.Set("y")
		if runs != 1 {
			t.Errorf("effect ran inside batch")
		}
	})

	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestUntracked(t *testing.T) {
	s := NewSignal(0)
	runs := 0
	NewEffect(func() {
		runs++
		Untracked(func() { _ = s.Get() })
	})
	s.Set(1)
	if runs != 1 {
		t.Errorf("untracked read subscribed; runs = %d", runs)
	}
}

func TestSameValue(t *testing.T) {
	m := map[string]any{}
	sl := []int{1, 2}
	f := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"ints", 1, 1, true},
		{"int vs int64", 1, int64(1), false},
		{"nan", math.NaN(), math.NaN(), true},
		{"same map", m, m, true},
		{"different maps", m, map[string]any{}, false},
		{"same slice", sl, sl, true},
		{"resliced", sl, sl[:1], false},
		{"func", f, f, false},
		{"struct", struct{ A int }{1}, struct{ A int }{1}, true},
		{"struct with map", struct{ A any }{m}, struct{ A any }{m}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
