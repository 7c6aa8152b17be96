package vtest

import (
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/internal/logging"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/renderer"
	"github.com/vango-dev/reconcile/pkg/scheduler"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Harness wires a renderer to an in-memory host through a recorder.
type Harness struct {
	Memory    *host.Memory
	Ops       *host.Recorder
	Clock     *scheduler.Manual
	Renderer  *renderer.Renderer
	Container *host.Node

	diagnostics []renderer.Diagnostic
}

// Option configures a Harness.
type Option func(*config)

type config struct {
	rendererOpts []renderer.Option
	queueOpts    []scheduler.QueueOption
}

// WithRendererOptions passes extra options to renderer.New.
func WithRendererOptions(opts ...renderer.Option) Option {
	return func(c *config) { c.rendererOpts = append(c.rendererOpts, opts...) }
}

// WithQueueOptions passes extra options to the scheduler queue.
func WithQueueOptions(opts ...scheduler.QueueOption) Option {
	return func(c *config) { c.queueOpts = append(c.queueOpts, opts...) }
}

// New creates a harness rendering into a fresh <div> container. Logging
// is discarded; diagnostics are collected.
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	nop := logging.NewNop()
	h := &Harness{Memory: host.NewMemory()}
	h.Ops = host.NewRecorder(h.Memory)
	h.Container = h.Memory.NewContainer("div")
	h.Ops.Attach(h.Container)
	h.Clock = scheduler.NewManual(append([]scheduler.QueueOption{scheduler.WithLogger(nop)}, cfg.queueOpts...)...)

	ropts := []renderer.Option{
		renderer.WithHost(h.Clock),
		renderer.WithLogger(nop),
		renderer.WithDiagnostics(func(d renderer.Diagnostic) {
			h.diagnostics = append(h.diagnostics, d)
		}),
	}
	h.Renderer = renderer.New(h.Ops, append(ropts, cfg.rendererOpts...)...)
	return h
}

// Render renders v into the container and flushes queued updates.
func (h *Harness) Render(v *vdom.VNode) {
	h.Renderer.Render(v, h.Container)
	h.Clock.Settle()
}

// Unmount renders nil into the container.
func (h *Harness) Unmount() {
	h.Render(nil)
}

// Flush runs pending tasks and queued updates.
func (h *Harness) Flush() {
	h.Clock.Settle()
}

// Advance moves virtual time forward.
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Advance(d)
}

// AwaitTask waits for a task submitted from another goroutine and runs it.
func (h *Harness) AwaitTask(timeout time.Duration) bool {
	ok := h.Clock.AwaitTask(timeout)
	h.Clock.Settle()
	return ok
}

// HTML returns the container's inner HTML.
func (h *Harness) HTML() string {
	return h.Container.InnerHTML()
}

// ResetOps clears recorded host operations.
func (h *Harness) ResetOps() {
	h.Ops.Reset()
}

// Diagnostics returns the diagnostics reported so far.
func (h *Harness) Diagnostics() []renderer.Diagnostic {
	return h.diagnostics
}

// HasDiagnostic reports whether a diagnostic with code was reported.
func (h *Harness) HasDiagnostic(code string) bool {
	for _, d := range h.diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Find returns the first element with tag in document order, or nil.
func (h *Harness) Find(tag string) *host.Node {
	return find(h.Container, func(n *host.Node) bool {
		return n.Type == host.ElementNode && n.Tag == tag
	})
}

// FindByAttr returns the first element whose attribute name equals value.
func (h *Harness) FindByAttr(name, value string) *host.Node {
	return find(h.Container, func(n *host.Node) bool {
		v, ok := n.Attr(name)
		return ok && v == value
	})
}

func find(n *host.Node, match func(*host.Node) bool) *host.Node {
	for _, c := range n.Children {
		if c.Type != host.ElementNode {
			continue
		}
		if match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// RenderToString mounts node into a fresh in-memory host and returns the
// resulting HTML.
//
// Example:
//
//	html := vtest.RenderToString(vdom.Div(vdom.Class("card"), "hi"))
//	// <div class="card">hi</div>
func RenderToString(node *vdom.VNode) string {
	mem := host.NewMemory()
	container := mem.NewContainer("div")
	r := renderer.New(mem, renderer.WithLogger(logging.NewNop()))
	r.Render(node, container)
	r.Flush()
	return container.InnerHTML()
}

// ExpectHTML asserts the harness container's inner HTML.
func ExpectHTML(t testing.TB, h *Harness, want string) {
	t.Helper()
	if got := h.HTML(); got != want {
		t.Errorf("HTML() =\n%s\nwant\n%s", truncate(got, 500), want)
	}
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, vdom.Comp(Greeting), "Welcome")
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectOps asserts how many operations of kind the harness recorded.
func ExpectOps(t testing.TB, h *Harness, kind host.OpKind, want int) {
	t.Helper()
	if got := h.Ops.Count(kind); got != want {
		t.Errorf("%s ops = %d, want %d (recorded: %s)", kind, got, want, h.Ops.Summary())
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
