// Package scheduler provides the job queue that coalesces component
// updates, and the single-goroutine hosts that drive it.
//
// A Queue holds at most one pending entry per job ID. Offering a job that
// is already pending is a no-op, so any number of state changes between
// two flushes cause one re-render per component. Jobs run in the order
// they were first queued. A job that queues itself again while the queue
// is flushing runs again in the same flush, up to a recursion limit.
//
// Hosts implement Dispatcher and Clock on top of a Queue:
//
//   - Loop runs tasks and timers on one goroutine and flushes the queue
//     after each of them. It backs live sessions.
//   - Manual runs nothing until told to. Tests and the diff tool use it to
//     step through time deterministically.
package scheduler
