package renderer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/scheduler"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// ErrNoComponent is reported when a loader returns neither a component
// nor an error.
var ErrNoComponent = errors.New("renderer: async loader returned no component")

// Loader fetches a component. It runs on its own goroutine and should
// return promptly once ctx is cancelled.
type Loader func(ctx context.Context) (vdom.Component, error)

// AsyncOptions configures DefineAsync.
type AsyncOptions struct {
	// Name labels the wrapper. Default: "AsyncComponentWrapper".
	Name string

	Loader Loader

	// Timeout fails the load if it has not settled in time. Zero waits
	// forever.
	Timeout time.Duration

	// Delay postpones showing LoadingComponent.
	Delay time.Duration

	// ErrorComponent renders on failure and timeout. It receives the
	// error as prop "error".
	ErrorComponent vdom.Component

	// LoadingComponent renders while the loader runs.
	LoadingComponent vdom.Component

	// OnError decides what happens after a failed attempt: call retry to
	// run the loader again or fail to give up. attempts counts previous
	// retries.
	OnError func(err error, retry, fail func(), attempts int)
}

// AsyncComponent is a component whose implementation is loaded on first
// mount. Once a load succeeds the result is kept and later mounts render
// it immediately.
type AsyncComponent struct {
	opts AsyncOptions
	def  *Definition

	mu       sync.Mutex
	resolved vdom.Component
}

// DefineAsync creates an async component wrapper.
func DefineAsync(opts AsyncOptions) *AsyncComponent {
	if opts.Name == "" {
		opts.Name = "AsyncComponentWrapper"
	}
	a := &AsyncComponent{opts: opts}
	a.def = &Definition{
		Name:  opts.Name,
		Setup: a.setup,
	}
	return a
}

// ComponentName implements vdom.Component.
func (a *AsyncComponent) ComponentName() string { return a.opts.Name }

// VNodeKind implements vdom.KindHinter.
func (a *AsyncComponent) VNodeKind() vdom.VKind { return vdom.KindAsync }

func (a *AsyncComponent) definition() *Definition { return a.def }

// Resolved returns the loaded component, or nil.
func (a *AsyncComponent) Resolved() vdom.Component {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolved
}

func (a *AsyncComponent) setResolved(c vdom.Component) {
	a.mu.Lock()
	a.resolved = c
	a.mu.Unlock()
}

// asyncLoad is the per-instance load state. Apart from the loader
// goroutine, it is only touched on the host goroutine.
type asyncLoad struct {
	a    *AsyncComponent
	inst *Instance
	host scheduler.Host

	ctx    context.Context
	cancel context.CancelFunc

	loaded   *reactive.Signal[bool]
	failure  *reactive.Signal[error]
	loading  *reactive.Signal[bool]
	timedOut bool
	settled  bool
	attempts int

	delayTimer   scheduler.Timer
	timeoutTimer scheduler.Timer
}

func (a *AsyncComponent) setup(_ *reactive.Store, sc *SetupContext) SetupResult {
	inst := sc.Instance()
	l := &asyncLoad{
		a:       a,
		inst:    inst,
		host:    sc.Scheduler(),
		loaded:  reactive.NewSignal(false),
		failure: reactive.NewSignal[error](nil),
		loading: reactive.NewSignal(false),
	}

	if a.Resolved() != nil {
		l.loaded.Set(true)
		l.settled = true
		return SetupResult{Render: l.render}
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	sc.OnUnmounted(l.abort)

	if a.opts.Delay > 0 {
		l.delayTimer = l.host.AfterFunc(a.opts.Delay, func() {
			if !l.settled {
				l.loading.Set(true)
			}
		})
	} else {
		l.loading.Set(true)
	}

	if a.opts.Timeout > 0 {
		l.timeoutTimer = l.host.AfterFunc(a.opts.Timeout, l.timeout)
	}

	l.load()
	return SetupResult{Render: l.render}
}

func (l *asyncLoad) render(c *RenderContext) *vdom.VNode {
	if l.loaded.Get() {
		if comp := l.a.Resolved(); comp != nil {
			return vdom.Comp(comp, l.inst.vnode.Props, l.inst.vnode.Slots)
		}
	}
	if err := l.failure.Get(); err != nil && l.a.opts.ErrorComponent != nil {
		return vdom.Comp(l.a.opts.ErrorComponent, vdom.Prop("error", err))
	}
	if l.loading.Get() && l.a.opts.LoadingComponent != nil {
		return vdom.Comp(l.a.opts.LoadingComponent)
	}
	return nil
}

// load starts one loader attempt. The result is handed back to the host
// goroutine; results arriving after the load settled are dropped.
func (l *asyncLoad) load() {
	ctx := l.ctx
	loader := l.a.opts.Loader
	r := l.inst.r
	go func() {
		comp, err := loader(ctx)
		if subErr := l.host.Submit(func() { l.result(comp, err) }); subErr != nil {
			r.report(r.diagnose("R011", l.a.opts.Name).Wrap(subErr))
		}
	}()
}

func (l *asyncLoad) result(comp vdom.Component, err error) {
	if l.settled {
		return
	}
	r := l.inst.r
	if err == nil && comp == nil {
		err = ErrNoComponent
	}

	if err != nil {
		if l.a.opts.OnError == nil {
			l.fail(err)
			return
		}
		attempts := l.attempts
		retry := func() {
			if l.settled {
				return
			}
			l.attempts++
			r.metrics.ObserveAsync("retried")
			l.load()
		}
		l.a.opts.OnError(err, retry, func() { l.fail(err) }, attempts)
		return
	}

	l.a.setResolved(comp)
	l.settle()
	l.loaded.Set(true)
	r.metrics.ObserveAsync("resolved")
}

func (l *asyncLoad) fail(err error) {
	if l.settled {
		return
	}
	r := l.inst.r
	re := r.diagnose("R006", l.a.opts.Name).Wrap(err)
	r.report(re)
	r.metrics.ObserveAsync("failed")
	l.settle()
	l.failure.Set(re)
}

func (l *asyncLoad) timeout() {
	if l.settled {
		return
	}
	r := l.inst.r
	re := r.diagnose("R007", l.a.opts.Name).With("timeout", l.a.opts.Timeout.String())
	r.report(re)
	r.metrics.ObserveAsync("timeout")
	l.timedOut = true
	l.settle()
	l.cancel()
	l.failure.Set(re)
}

// settle ends the load: the first outcome wins and later ones are
// ignored.
func (l *asyncLoad) settle() {
	l.settled = true
	l.loading.Set(false)
	l.stopTimers()
}

func (l *asyncLoad) abort() {
	l.settled = true
	l.stopTimers()
	if l.cancel != nil {
		l.cancel()
	}
}

func (l *asyncLoad) stopTimers() {
	if l.delayTimer != nil {
		l.delayTimer.Stop()
	}
	if l.timeoutTimer != nil {
		l.timeoutTimer.Stop()
	}
}
