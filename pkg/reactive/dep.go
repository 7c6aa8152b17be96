package reactive

import "sync"

// dep is a single observable slot: a signal value, one store key, or the
// key set of a store.
type dep struct {
	mu   sync.Mutex
	subs []Listener
}

// track subscribes the current listener, if any.
func (d *dep) track() {
	l := getCurrentListener()
	if l == nil {
		return
	}
	if d.subscribe(l) {
		if st, ok := l.(sourceTracker); ok {
			st.addSource(d)
		}
	}
}

// subscribe adds a listener. Returns false if it was already subscribed.
func (d *dep) subscribe(l Listener) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := l.ID()
	for _, sub := range d.subs {
		if sub.ID() == id {
			return false
		}
	}
	d.subs = append(d.subs, l)
	return true
}

// unsubscribe removes a listener.
func (d *dep) unsubscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := l.ID()
	for i, sub := range d.subs {
		if sub.ID() == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// subscriberCount is used by tests.
func (d *dep) subscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// trigger notifies all subscribers. The listener currently running on this
// goroutine is skipped so an effect writing what it reads does not recurse.
// Inside a Batch, listeners are queued instead.
func (d *dep) trigger() {
	d.mu.Lock()
	if len(d.subs) == 0 {
		d.mu.Unlock()
		return
	}
	subs := make([]Listener, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	var current uint64
	if l := getCurrentListener(); l != nil {
		current = l.ID()
	}

	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		tc := ctx.(*trackingContext)
		if tc.batchDepth > 0 {
			for _, sub := range subs {
				if sub.ID() != current {
					tc.pendingUpdates = append(tc.pendingUpdates, sub)
				}
			}
			return
		}
	}

	for _, sub := range subs {
		if sub.ID() == current {
			continue
		}
		sub.MarkDirty()
	}
}
