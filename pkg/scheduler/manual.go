package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Manual is a Host that only runs work when told to. Time is virtual and
// moves only through Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	tasks   []func()
	timers  timerHeap
	signal  chan struct{}
	stopped bool

	queue *Queue
}

var _ Host = (*Manual)(nil)

// NewManual creates a manual host. Options configure its queue.
func NewManual(opts ...QueueOption) *Manual {
	return &Manual{
		now:    time.Unix(0, 0),
		signal: make(chan struct{}, 1),
		queue:  NewQueue(opts...),
	}
}

// Queue implements Host.
func (m *Manual) Queue() *Queue {
	return m.queue
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Submit implements Dispatcher. The task runs on the next RunPending.
func (m *Manual) Submit(fn func()) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	m.tasks = append(m.tasks, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return nil
}

// AfterFunc implements Clock against the virtual time.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &timer{when: m.now.Add(d), seq: m.seq, fn: fn}
	heap.Push(&m.timers, t)
	return t
}

// Stop rejects further submissions.
func (m *Manual) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

// Flush runs the queued jobs.
func (m *Manual) Flush() int {
	return m.queue.Flush(context.Background())
}

// RunPending runs submitted tasks, including tasks they submit, flushing
// the queue after each. It returns the number of tasks run.
func (m *Manual) RunPending() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.tasks) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.tasks[0]
		m.tasks[0] = nil
		m.tasks = m.tasks[1:]
		m.mu.Unlock()

		fn()
		m.Flush()
		n++
	}
}

// Advance moves virtual time forward by d, firing due timers in deadline
// order. Pending tasks run before each timer and after the last one.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.RunPending()

		m.mu.Lock()
		t := m.timers.popDue(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		if t.when.After(m.now) {
			m.now = t.when
		}
		m.mu.Unlock()

		t.fired.Store(true)
		t.fn()
		m.Flush()
	}
	m.RunPending()
}

// Settle runs pending tasks and flushes until nothing is left to do
// without advancing time.
func (m *Manual) Settle() {
	for {
		ran := m.RunPending()
		if m.Flush() == 0 && ran == 0 {
			return
		}
	}
}

// AwaitTask blocks until a task has been submitted, or timeout elapses,
// then runs pending tasks. It reports whether any task ran. Use it to
// wait for work handed back from other goroutines.
func (m *Manual) AwaitTask(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if m.RunPending() > 0 {
			return true
		}
		select {
		case <-m.signal:
		case <-deadline.C:
			return m.RunPending() > 0
		}
	}
}

// PendingTimers returns the number of live timers.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}
