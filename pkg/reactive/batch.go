package reactive

// Batch groups multiple updates into a single notification phase.
// Listeners notified inside fn are collected, deduplicated and notified once
// when the outermost batch completes.
//
// Example:
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//	// Subscribers of both signals run once.
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			processPendingUpdates(ctx)
		}
	}()

	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates(ctx *trackingContext) {
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	releaseTrackingContext(ctx)
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		listener.MarkDirty()
	}
}

// Untracked runs fn without tracking reads as dependencies.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
