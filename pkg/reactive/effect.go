package reactive

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Scheduler receives an effect whose dependencies changed. The effect is
// not run; the scheduler decides when to call Run.
type Scheduler func(e *Effect)

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithScheduler routes change notifications to s instead of re-running.
func WithScheduler(s Scheduler) EffectOption {
	return func(e *Effect) { e.scheduler = s }
}

// WithLazy skips the initial run performed by NewEffect.
func WithLazy() EffectOption {
	return func(e *Effect) { e.lazy = true }
}

// WithName labels the effect in logs.
func WithName(name string) EffectOption {
	return func(e *Effect) { e.name = name }
}

// WithErrorHandler is called with the recovered value when the effect
// function panics. The default handler logs through the effect's logger.
func WithErrorHandler(h func(e *Effect, recovered any, stack []byte)) EffectOption {
	return func(e *Effect) { e.onPanic = h }
}

// WithLogger sets the logger used by the default panic handler.
func WithLogger(l *slog.Logger) EffectOption {
	return func(e *Effect) { e.logger = l }
}

// Effect runs a function and re-runs it (or schedules it) whenever a
// reactive value it read during its last run changes.
type Effect struct {
	id        uint64
	name      string
	fn        func()
	scheduler Scheduler
	lazy      bool
	onPanic   func(e *Effect, recovered any, stack []byte)
	logger    *slog.Logger

	sources   []*dep
	sourcesMu sync.Mutex

	stopped atomic.Bool
	runs    atomic.Uint64
}

// NewEffect creates an effect and, unless WithLazy is given, runs it once
// to collect its dependencies.
func NewEffect(fn func(), opts ...EffectOption) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.lazy {
		e.Run()
	}
	return e
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the label given with WithName.
func (e *Effect) Name() string {
	return e.name
}

// Runs returns how many times the effect function has been invoked.
func (e *Effect) Runs() uint64 {
	return e.runs.Load()
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return !e.stopped.Load()
}

// MarkDirty implements Listener.
func (e *Effect) MarkDirty() {
	if e.stopped.Load() {
		return
	}
	if e.scheduler != nil {
		e.scheduler(e)
		return
	}
	e.Run()
}

// Run clears the previous dependencies and invokes the effect function with
// this effect as the current listener. A panic in the function is recovered
// and handed to the panic handler; the effect stays active.
func (e *Effect) Run() {
	if e.stopped.Load() {
		return
	}

	e.clearSources()
	e.runs.Add(1)

	old := setCurrentListener(e)
	defer func() {
		setCurrentListener(old)
		if r := recover(); r != nil {
			e.handlePanic(r, debug.Stack())
		}
	}()

	e.fn()
}

// Stop unsubscribes the effect from everything it read. A stopped effect
// never runs again.
func (e *Effect) Stop() {
	if e.stopped.Swap(true) {
		return
	}
	e.clearSources()
}

// DependencyCount returns the number of distinct values read during the
// last run.
func (e *Effect) DependencyCount() int {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	return len(e.sources)
}

func (e *Effect) addSource(d *dep) {
	e.sourcesMu.Lock()
	e.sources = append(e.sources, d)
	e.sourcesMu.Unlock()
}

func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	sources := e.sources
	e.sources = nil
	e.sourcesMu.Unlock()

	for _, d := range sources {
		d.unsubscribe(e)
	}
}

func (e *Effect) handlePanic(r any, stack []byte) {
	if e.onPanic != nil {
		e.onPanic(e, r, stack)
		return
	}
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("effect panicked",
		"effect", e.name,
		"effect_id", e.id,
		"panic", fmt.Sprint(r),
	)
}
