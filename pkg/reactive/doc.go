// Package reactive implements the observer-subscription graph that drives
// component re-rendering.
//
// Reading a Signal or a Store key while an Effect runs subscribes that
// effect; writing a changed value notifies every subscriber except the
// effect that is currently running. Effects drop all of their
// subscriptions before each run and collect them again while running, so
// conditional reads never leave stale dependencies behind.
//
// An effect created with WithScheduler does not re-run when notified;
// it hands itself to the scheduler instead. The renderer uses this to
// funnel component updates into a deduplicating job queue.
//
// # Core Types
//
//   - Signal[T]: a single reactive value
//   - Store: a reactive string-keyed map (deep, shallow, or a read-only view)
//   - Effect: a function re-run when what it read changes
//
// # Batching
//
// Batch defers notifications until the outermost batch returns and
// delivers each listener at most once.
//
// Tracking state is kept per goroutine. Signals may be written from any
// goroutine, but an effect only tracks reads made on the goroutine it runs
// on.
package reactive
