package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/internal/logging"
)

func TestManualTimersFireInOrder(t *testing.T) {
	m := NewManual(WithLogger(logging.NewNop()))
	var order []string

	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	m.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })

	m.Advance(25 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
	if got := m.Now(); !got.Equal(time.Unix(0, 0).Add(25 * time.Millisecond)) {
		t.Errorf("Now() = %v", got)
	}

	m.Advance(10 * time.Millisecond)
	if len(order) != 3 {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestManualTimerStop(t *testing.T) {
	m := NewManual(WithLogger(logging.NewNop()))
	fired := false
	tm := m.AfterFunc(time.Second, func() { fired = true })

	if !tm.Stop() {
		t.Error("Stop() = false on pending timer")
	}
	if tm.Stop() {
		t.Error("second Stop() = true")
	}
	m.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if m.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d, want 0", m.PendingTimers())
	}
}

func TestManualFlushesAfterTask(t *testing.T) {
	m := NewManual(WithLogger(logging.NewNop()))
	flushed := false

	_ = m.Submit(func() {
		m.Queue().Enqueue(1, func() { flushed = true })
	})
	if flushed {
		t.Fatal("task ran before RunPending")
	}
	if n := m.RunPending(); n != 1 {
		t.Errorf("RunPending() = %d, want 1", n)
	}
	if !flushed {
		t.Error("queue not flushed after task")
	}
}

func TestManualAwaitTask(t *testing.T) {
	m := NewManual(WithLogger(logging.NewNop()))
	done := false

	go func() {
		_ = m.Submit(func() { done = true })
	}()

	if !m.AwaitTask(time.Second) {
		t.Fatal("AwaitTask() = false, want true")
	}
	if !done {
		t.Error("submitted task did not run")
	}
	if m.AwaitTask(10 * time.Millisecond) {
		t.Error("AwaitTask() with nothing submitted = true")
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	m.Stop()
	if err := m.Submit(func() {}); err != ErrStopped {
		t.Errorf("Submit() after Stop = %v, want ErrStopped", err)
	}
}

func TestLoopRunsTasksAndTimers(t *testing.T) {
	l := NewLoop(WithLogger(logging.NewNop()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	var jobs atomic.Int32
	taskDone := make(chan struct{})
	_ = l.Submit(func() {
		l.Queue().Enqueue(1, func() { jobs.Add(1) })
		l.Queue().Enqueue(1, func() { jobs.Add(1) })
		close(taskDone)
	})

	timerDone := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(timerDone) })

	select {
	case <-timerDone:
	case <-ctx.Done():
		t.Fatal("timer did not fire")
	}
	<-taskDone

	if jobs.Load() != 1 {
		t.Errorf("jobs = %d, want 1", jobs.Load())
	}

	l.Stop()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-ctx.Done():
		t.Fatal("loop did not stop")
	}
	if l.State() != StateTerminated {
		t.Errorf("State() = %v, want terminated", l.State())
	}
	if err := l.Submit(func() {}); err != ErrStopped {
		t.Errorf("Submit() after Stop = %v, want ErrStopped", err)
	}
}

func TestLoopRunTwice(t *testing.T) {
	l := NewLoop(WithLogger(logging.NewNop()))
	l.Stop()
	if err := l.Run(context.Background()); err != ErrLoopTerminated {
		t.Errorf("Run() after Stop = %v, want ErrLoopTerminated", err)
	}
	<-l.Done()
}

func TestLoopRecoversTaskPanic(t *testing.T) {
	l := NewLoop(WithLogger(logging.NewNop()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = l.Run(ctx) }()
	defer l.Stop()

	_ = l.Submit(func() { panic("boom") })
	done := make(chan struct{})
	_ = l.Submit(func() { close(done) })

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("loop stopped processing after a panic")
	}
}
