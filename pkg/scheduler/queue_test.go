package scheduler

import (
	"context"
	"errors"
	"testing"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/logging"
)

func TestQueueDeduplicates(t *testing.T) {
	q := NewQueue(WithLogger(logging.NewNop()))
	runs := 0

	if !q.Enqueue(1, func() { runs++ }) {
		t.Fatal("first Enqueue() = false, want true")
	}
	if q.Enqueue(1, func() { runs++ }) {
		t.Error("second Enqueue() of pending id = true, want false")
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}

	if n := q.Flush(context.Background()); n != 1 {
		t.Errorf("Flush() = %d, want 1", n)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestQueueOrder(t *testing.T) {
	q := NewQueue(WithLogger(logging.NewNop()))
	var order []uint64

	for _, id := range []uint64{3, 1, 2, 1} {
		id := id
		q.Enqueue(id, func() { order = append(order, id) })
	}
	q.Flush(context.Background())

	want := []uint64{3, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestQueueJobsQueuedDuringFlushRun(t *testing.T) {
	q := NewQueue(WithLogger(logging.NewNop()))
	var order []string

	q.Enqueue(1, func() {
		order = append(order, "parent")
		q.Enqueue(2, func() { order = append(order, "child") })
	})

	if n := q.Flush(context.Background()); n != 2 {
		t.Errorf("Flush() = %d, want 2", n)
	}
	if len(order) != 2 || order[1] != "child" {
		t.Errorf("order = %v, want [parent child]", order)
	}
}

func TestQueueRecursionLimit(t *testing.T) {
	var reported error
	q := NewQueue(
		WithLogger(logging.NewNop()),
		WithRecursionLimit(5),
		WithErrorHandler(func(err error) { reported = err }),
	)

	runs := 0
	var job func()
	job = func() {
		runs++
		q.Enqueue(7, job)
	}
	q.Enqueue(7, job)
	q.Flush(context.Background())

	if runs != 5 {
		t.Errorf("runs = %d, want 5", runs)
	}
	var re *rerrors.ReconcileError
	if !errors.As(reported, &re) || re.Code != "R009" {
		t.Errorf("reported = %v, want R009", reported)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after flush, want 0", q.Len())
	}
}

func TestQueueNestedFlushIsNoop(t *testing.T) {
	q := NewQueue(WithLogger(logging.NewNop()))
	nested := -1
	q.Enqueue(1, func() {
		nested = q.Flush(context.Background())
	})
	q.Flush(context.Background())

	if nested != 0 {
		t.Errorf("nested Flush() = %d, want 0", nested)
	}
}

func TestQueueRecoversJobPanic(t *testing.T) {
	q := NewQueue(WithLogger(logging.NewNop()))
	ran := false
	q.Enqueue(1, func() { panic("boom") })
	q.Enqueue(2, func() { ran = true })

	q.Flush(context.Background())
	if !ran {
		t.Error("job after panicking job did not run")
	}
	if q.Flushing() {
		t.Error("queue still flushing after panic")
	}
}

func TestQueuePostFlush(t *testing.T) {
	calls := 0
	q := NewQueue(WithLogger(logging.NewNop()), WithPostFlush(func() { calls++ }))

	q.Flush(context.Background())
	if calls != 1 {
		t.Errorf("calls after empty flush = %d, want 1", calls)
	}

	q.Enqueue(1, func() {
		// Nested flushes do not run the hook.
		q.Flush(context.Background())
	})
	q.Flush(context.Background())
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
