package renderer

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/scheduler"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithHost sets the scheduler host that runs queued updates, timers and
// async completions. The default is a scheduler.Manual.
func WithHost(h scheduler.Host) Option {
	return func(r *Renderer) { r.host = h }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithMetrics records reconciliation metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Renderer) { r.metrics = c }
}

// WithTracer traces Render calls.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) { r.tracer = t }
}

// WithDiagnostics receives every reported Diagnostic.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(r *Renderer) { r.onDiag = fn }
}

// Renderer reconciles VNode trees into containers of one host adapter.
type Renderer struct {
	adapter host.Adapter
	nav     host.Navigator
	host    scheduler.Host
	queue   *scheduler.Queue

	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
	onDiag  func(Diagnostic)

	roots        map[host.Handle]*vdom.VNode
	instances    map[vdom.InstanceID]*Instance
	nextInstance vdom.InstanceID
}

// New creates a renderer issuing operations to adapter. If adapter also
// implements host.Navigator, the renderer uses it to locate nodes.
func New(adapter host.Adapter, opts ...Option) *Renderer {
	r := &Renderer{
		adapter:   adapter,
		roots:     make(map[host.Handle]*vdom.VNode),
		instances: make(map[vdom.InstanceID]*Instance),
	}
	if nav, ok := adapter.(host.Navigator); ok {
		r.nav = nav
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.host == nil {
		r.host = scheduler.NewManual(scheduler.WithLogger(r.logger), scheduler.WithMetrics(r.metrics))
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("github.com/vango-dev/reconcile/pkg/renderer")
	}
	r.queue = r.host.Queue()
	r.queue.SetErrorHandler(r.reportError)
	return r
}

// Render reconciles vnode into container. A nil vnode unmounts whatever
// was rendered there before.
func (r *Renderer) Render(vnode *vdom.VNode, container host.Handle) {
	r.RenderContext(context.Background(), vnode, container)
}

// RenderContext is Render with a context for tracing.
func (r *Renderer) RenderContext(ctx context.Context, vnode *vdom.VNode, container host.Handle) {
	_, span := r.tracer.Start(ctx, "renderer.render")
	defer span.End()

	prev := r.roots[container]
	if vnode == nil {
		if prev != nil {
			r.unmount(prev, true)
			delete(r.roots, container)
		}
		span.SetAttributes(attribute.Bool("renderer.unmount", true))
		return
	}

	r.patch(prev, vnode, container, nil)
	r.roots[container] = vnode
	span.SetAttributes(attribute.String("renderer.root", vnode.String()))
}

// Root returns the tree last rendered into container.
func (r *Renderer) Root(container host.Handle) *vdom.VNode {
	return r.roots[container]
}

// Instance returns a mounted component instance.
func (r *Renderer) Instance(id vdom.InstanceID) *Instance {
	return r.instances[id]
}

// InstanceCount returns the number of live component instances,
// including instances held by KeepAlive caches.
func (r *Renderer) InstanceCount() int {
	return len(r.instances)
}

// Flush runs queued component updates now.
func (r *Renderer) Flush() int {
	return r.queue.Flush(context.Background())
}

// Scheduler returns the host the renderer schedules work on.
func (r *Renderer) Scheduler() scheduler.Host {
	return r.host
}

// Adapter returns the host adapter.
func (r *Renderer) Adapter() host.Adapter {
	return r.adapter
}
