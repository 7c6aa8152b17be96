package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a running loop.
	ErrLoopAlreadyRunning = errors.New("scheduler: loop is already running")

	// ErrLoopTerminated is returned by Run after Stop.
	ErrLoopTerminated = errors.New("scheduler: loop has been terminated")
)

// LoopState is the lifecycle state of a Loop.
type LoopState int32

const (
	StateAwake LoopState = iota
	StateRunning
	StateTerminated
)

// String returns the state name.
func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "awake"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("LoopState(%d)", int32(s))
	}
}

// Loop runs submitted tasks and timers on the goroutine that calls Run,
// flushing its queue after each one.
//
// # Thread Safety
//
// Submit, AfterFunc and Stop may be called from any goroutine. Tasks,
// timer callbacks and queued jobs only ever run on the loop goroutine.
type Loop struct {
	// No copying allowed
	_ [0]func()

	mu     sync.Mutex
	tasks  []func()
	buf    []func()
	timers timerHeap
	seq    uint64

	wake  chan struct{}
	done  chan struct{}
	state atomic.Int32

	stopOnce sync.Once
	queue    *Queue
	logger   *slog.Logger
}

var _ Host = (*Loop)(nil)

// NewLoop creates a loop. Options configure its queue; the queue's logger
// is also used for task panics.
func NewLoop(opts ...QueueOption) *Loop {
	q := NewQueue(opts...)
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		queue:  q,
		logger: q.logger,
	}
	l.state.Store(int32(StateAwake))
	return l
}

// Queue implements Host.
func (l *Loop) Queue() *Queue {
	return l.queue
}

// State returns the current lifecycle state.
func (l *Loop) State() LoopState {
	return LoopState(l.state.Load())
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Submit implements Dispatcher.
func (l *Loop) Submit(fn func()) error {
	if l.State() == StateTerminated {
		return ErrStopped
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.wakeup()
	return nil
}

// AfterFunc implements Clock.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	l.mu.Lock()
	l.seq++
	t := &timer{when: time.Now().Add(d), seq: l.seq, fn: fn}
	heap.Push(&l.timers, t)
	l.mu.Unlock()
	l.wakeup()
	return t
}

// Stop terminates the loop. Pending tasks and timers are discarded.
// It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		prev := LoopState(l.state.Swap(int32(StateTerminated)))
		if prev == StateAwake {
			close(l.done)
			return
		}
		l.wakeup()
	})
}

// Run processes work until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateAwake), int32(StateRunning)) {
		if l.State() == StateTerminated {
			return ErrLoopTerminated
		}
		return ErrLoopAlreadyRunning
	}
	defer close(l.done)
	defer l.state.Store(int32(StateTerminated))

	idle := time.NewTimer(time.Hour)
	defer idle.Stop()

	for {
		if l.State() == StateTerminated {
			return nil
		}

		l.runTasks(ctx)
		l.runTimers(ctx)

		l.mu.Lock()
		pending := len(l.tasks)
		next, hasTimer := l.timers.next()
		l.mu.Unlock()
		if pending > 0 {
			continue
		}

		wait := time.Hour
		if hasTimer {
			wait = time.Until(next)
			if wait <= 0 {
				continue
			}
		}
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(wait)

		select {
		case <-ctx.Done():
			l.state.Store(int32(StateTerminated))
			return ctx.Err()
		case <-l.wake:
		case <-idle.C:
		}
	}
}

// runTasks drains the ingress queue, swapping buffers so tasks submitted
// meanwhile wait for the next pass.
func (l *Loop) runTasks(ctx context.Context) {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = l.buf[:0]
	l.mu.Unlock()

	for i, fn := range tasks {
		l.safeRun(fn)
		l.queue.Flush(ctx)
		tasks[i] = nil
	}

	l.mu.Lock()
	l.buf = tasks[:0]
	l.mu.Unlock()
}

func (l *Loop) runTimers(ctx context.Context) {
	now := time.Now()
	for {
		l.mu.Lock()
		t := l.timers.popDue(now)
		l.mu.Unlock()
		if t == nil {
			return
		}
		t.fired.Store(true)
		l.safeRun(t.fn)
		l.queue.Flush(ctx)
	}
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

func (l *Loop) wakeup() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
