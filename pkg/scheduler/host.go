package scheduler

import (
	"errors"
	"time"
)

// ErrStopped is returned by Submit after the host has stopped.
var ErrStopped = errors.New("scheduler: host has stopped")

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented
	// the callback from running.
	Stop() bool
}

// Clock schedules callbacks on the host's goroutine.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Dispatcher runs functions on the host's goroutine. Submit is safe to
// call from any goroutine.
type Dispatcher interface {
	Submit(fn func()) error
}

// Host is what the renderer needs from its environment: a goroutine to
// run on, a clock, and the update queue flushed after each task.
type Host interface {
	Dispatcher
	Clock
	Queue() *Queue
}
