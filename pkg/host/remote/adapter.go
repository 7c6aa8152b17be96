package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/protocol"
)

// RootID is the node ID of the root container.
const RootID uint32 = 1

// ErrUnknownNode is returned for events targeting a node the adapter does
// not know.
var ErrUnknownNode = errors.New("remote: unknown node")

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithMetrics counts host ops.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Adapter) { a.metrics = c }
}

// WithRootTag sets the tag of the shadow root container. Default "div".
func WithRootTag(tag string) Option {
	return func(a *Adapter) { a.rootTag = tag }
}

// Adapter records host mutations as wire ops against a shadow tree.
// It is not safe for concurrent use; run it on the renderer's goroutine.
type Adapter struct {
	shadow  *host.Memory
	root    *host.Node
	rootTag string

	ids    map[*host.Node]uint32
	nodes  map[uint32]*host.Node
	nextID uint32

	ops  []protocol.HostOp
	seq  uint64
	sink Sink

	logger  *slog.Logger
	metrics *metrics.Collector
}

// New creates an adapter that flushes to sink.
func New(sink Sink, opts ...Option) *Adapter {
	a := &Adapter{
		shadow:  host.NewMemory(),
		rootTag: "div",
		ids:     make(map[*host.Node]uint32),
		nodes:   make(map[uint32]*host.Node),
		nextID:  RootID,
		sink:    sink,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("component", "remote")

	a.root = a.shadow.NewContainer(a.rootTag)
	a.ids[a.root] = RootID
	a.nodes[RootID] = a.root
	return a
}

// Root returns the root container handle to render into.
func (a *Adapter) Root() host.Handle {
	return a.root
}

// Shadow returns the shadow root. It mirrors what the client shows.
func (a *Adapter) Shadow() *host.Node {
	return a.root
}

// Hello returns the connection setup frame.
func (a *Adapter) Hello() *protocol.Frame {
	payload := protocol.EncodeHello(&protocol.Hello{Version: protocol.ProtocolVersion, Root: RootID})
	return protocol.NewFrame(protocol.FrameHello, 0, payload)
}

// ID returns the wire ID of h, or 0.
func (a *Adapter) ID(h host.Handle) uint32 {
	n, _ := h.(*host.Node)
	if n == nil {
		return 0
	}
	return a.ids[n]
}

// Node returns the shadow node with id, or nil.
func (a *Adapter) Node(id uint32) *host.Node {
	return a.nodes[id]
}

// Pending returns the number of ops not yet flushed.
func (a *Adapter) Pending() int {
	return len(a.ops)
}

func (a *Adapter) track(h host.Handle) uint32 {
	n := h.(*host.Node)
	a.nextID++
	a.ids[n] = a.nextID
	a.nodes[a.nextID] = n
	return a.nextID
}

func (a *Adapter) release(n *host.Node) {
	if id, ok := a.ids[n]; ok && id != RootID {
		delete(a.ids, n)
		delete(a.nodes, id)
	}
	for _, c := range n.Children {
		a.release(c)
	}
}

func (a *Adapter) emit(op protocol.HostOp) {
	a.ops = append(a.ops, op)
	a.metrics.ObserveHostOp(op.Op.String())
}

// CreateElement implements host.Adapter.
func (a *Adapter) CreateElement(tag string) host.Handle {
	h := a.shadow.CreateElement(tag)
	a.emit(protocol.HostOp{Op: protocol.OpCreateElement, ID: a.track(h), Tag: tag})
	return h
}

// CreateText implements host.Adapter.
func (a *Adapter) CreateText(text string) host.Handle {
	h := a.shadow.CreateText(text)
	a.emit(protocol.HostOp{Op: protocol.OpCreateText, ID: a.track(h), Text: text})
	return h
}

// SetText implements host.Adapter.
func (a *Adapter) SetText(h host.Handle, text string) {
	a.shadow.SetText(h, text)
	a.emit(protocol.HostOp{Op: protocol.OpSetText, ID: a.ID(h), Text: text})
}

// SetElementText implements host.Adapter.
func (a *Adapter) SetElementText(h host.Handle, text string) {
	el := h.(*host.Node)
	for _, c := range el.Children {
		a.release(c)
	}
	a.shadow.SetElementText(h, text)
	a.emit(protocol.HostOp{Op: protocol.OpSetElementText, ID: a.ID(h), Text: text})
}

// Insert implements host.Adapter.
func (a *Adapter) Insert(h, parent, anchor host.Handle) {
	a.shadow.Insert(h, parent, anchor)
	a.emit(protocol.HostOp{
		Op:     protocol.OpInsert,
		ID:     a.ID(h),
		Parent: a.ID(parent),
		Anchor: a.ID(anchor),
	})
}

// Remove implements host.Adapter.
func (a *Adapter) Remove(h host.Handle) {
	id := a.ID(h)
	a.shadow.Remove(h)
	a.release(h.(*host.Node))
	a.emit(protocol.HostOp{Op: protocol.OpRemove, ID: id})
}

// PatchProp implements host.Adapter.
func (a *Adapter) PatchProp(h host.Handle, name string, prev, next any) {
	a.shadow.PatchProp(h, name, prev, next)
	a.emit(propOp(a.ID(h), name, next))
}

// propOp maps a prop change to its wire op.
func propOp(id uint32, name string, next any) protocol.HostOp {
	switch {
	case host.IsEventProp(name):
		event := strings.ToLower(name[2:])
		if next == nil {
			return protocol.HostOp{Op: protocol.OpRemoveListener, ID: id, Name: event}
		}
		return protocol.HostOp{Op: protocol.OpSetListener, ID: id, Name: event}
	case name == "class":
		op := protocol.HostOp{Op: protocol.OpSetClass, ID: id, Name: name}
		if next != nil {
			op.Value = host.PropString(next)
		}
		return op
	}
	switch v := next.(type) {
	case nil:
		return protocol.HostOp{Op: protocol.OpRemoveProp, ID: id, Name: name}
	case bool:
		if !v {
			return protocol.HostOp{Op: protocol.OpRemoveProp, ID: id, Name: name}
		}
		return protocol.HostOp{Op: protocol.OpSetProp, ID: id, Name: name}
	default:
		return protocol.HostOp{Op: protocol.OpSetProp, ID: id, Name: name, Value: host.PropString(v)}
	}
}

// ParentNode implements host.Navigator.
func (a *Adapter) ParentNode(h host.Handle) host.Handle {
	return a.shadow.ParentNode(h)
}

// NextSibling implements host.Navigator.
func (a *Adapter) NextSibling(h host.Handle) host.Handle {
	return a.shadow.NextSibling(h)
}

// Flush sends the pending ops as one or more FrameOps frames. The last
// frame carries FlagFinal. Ops are dropped if the sink fails.
func (a *Adapter) Flush() error {
	if len(a.ops) == 0 {
		return nil
	}
	ops := a.ops
	a.ops = nil

	batches := split(ops)
	for i, batch := range batches {
		a.seq++
		flags := protocol.FlagSequenced
		if i == len(batches)-1 {
			flags |= protocol.FlagFinal
		}
		payload := protocol.EncodeOpBatch(&protocol.OpBatch{Seq: a.seq, Ops: batch})
		if err := a.sink.SendFrame(protocol.NewFrame(protocol.FrameOps, flags, payload)); err != nil {
			a.logger.Error("send ops", "seq", a.seq, "error", err)
			return fmt.Errorf("remote: send ops: %w", err)
		}
		a.logger.Debug("sent ops", "seq", a.seq, "count", len(batch), "bytes", len(payload))
	}
	return nil
}

// split cuts ops into batches whose encoding fits in one frame. An op
// that alone exceeds the budget goes out in a batch of its own.
func split(ops []protocol.HostOp) [][]protocol.HostOp {
	// Seq and count take at most 15 bytes.
	const budget = protocol.MaxPayloadSize - 16

	var batches [][]protocol.HostOp
	e := protocol.NewEncoder()
	start := 0
	for i := range ops {
		protocol.EncodeHostOpTo(e, &ops[i])
		if e.Len() > budget && i > start {
			batches = append(batches, ops[start:i])
			start = i
			e.Reset()
			protocol.EncodeHostOpTo(e, &ops[i])
		}
	}
	return append(batches, ops[start:])
}

// HandleEvent dispatches a client event to the listener on its target.
func (a *Adapter) HandleEvent(ev *protocol.Event) error {
	n := a.nodes[ev.Target]
	if n == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, ev.Target)
	}
	var args []any
	if ev.Payload != "" {
		args = append(args, ev.Payload)
	}
	if !n.Dispatch(ev.Name, args...) {
		a.logger.Warn("no listener", "target", ev.Target, "event", ev.Name)
	}
	return nil
}

// HandleFrame decodes and dispatches a client frame. Only FrameEvent is
// accepted.
func (a *Adapter) HandleFrame(f *protocol.Frame) error {
	if f.Type != protocol.FrameEvent {
		return fmt.Errorf("%w: %s", protocol.ErrInvalidFrameType, f.Type)
	}
	ev, err := protocol.DecodeEvent(f.Payload)
	if err != nil {
		return fmt.Errorf("remote: decode event: %w", err)
	}
	return a.HandleEvent(ev)
}
