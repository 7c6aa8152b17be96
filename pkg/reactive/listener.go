package reactive

// Listener is anything that can be notified when a dependency changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// sourceTracker is implemented by listeners that remember what they read
// so they can unsubscribe before the next run.
type sourceTracker interface {
	addSource(d *dep)
}
