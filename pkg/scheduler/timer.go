package scheduler

import (
	"container/heap"
	"sync/atomic"
	"time"
)

// timer is a scheduled callback.
type timer struct {
	when    time.Time
	seq     uint64
	fn      func()
	stopped atomic.Bool
	fired   atomic.Bool
}

// Stop implements Timer.
func (t *timer) Stop() bool {
	if t.fired.Load() {
		return false
	}
	return !t.stopped.Swap(true)
}

// timerHeap is a min-heap of timers ordered by deadline, then by
// scheduling order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(*timer))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// popDue removes and returns the earliest timer due at now, skipping
// stopped ones. It returns nil when none is due.
func (h *timerHeap) popDue(now time.Time) *timer {
	for h.Len() > 0 {
		t := (*h)[0]
		if t.stopped.Load() {
			heap.Pop(h)
			continue
		}
		if t.when.After(now) {
			return nil
		}
		heap.Pop(h)
		return t
	}
	return nil
}

// next returns the deadline of the earliest live timer.
func (h *timerHeap) next() (time.Time, bool) {
	for h.Len() > 0 {
		t := (*h)[0]
		if t.stopped.Load() {
			heap.Pop(h)
			continue
		}
		return t.when, true
	}
	return time.Time{}, false
}
