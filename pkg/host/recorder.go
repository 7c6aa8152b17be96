package host

import (
	"fmt"
	"log/slog"
	"strings"
)

// OpKind identifies a host operation.
type OpKind uint8

const (
	OpCreateElement OpKind = iota
	OpCreateText
	OpSetText
	OpSetElementText
	OpInsert
	OpMove
	OpRemove
	OpPatchProp
	opKindCount
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpSetElementText:
		return "SetElementText"
	case OpInsert:
		return "Insert"
	case OpMove:
		return "Move"
	case OpRemove:
		return "Remove"
	case OpPatchProp:
		return "PatchProp"
	default:
		return fmt.Sprintf("OpKind(%d)", k)
	}
}

// Op is one recorded adapter call.
type Op struct {
	Kind   OpKind
	Handle Handle
	Parent Handle
	Anchor Handle
	Tag    string
	Text   string
	Name   string
	Prev   any
	Next   any
}

// String formats the op for logs and the CLI.
func (o Op) String() string {
	switch o.Kind {
	case OpCreateElement:
		return fmt.Sprintf("%s <%s>", o.Kind, o.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		return fmt.Sprintf("%s %q", o.Kind, o.Text)
	case OpInsert, OpMove:
		if o.Anchor == nil {
			return fmt.Sprintf("%s %s -> %s (append)", o.Kind, describe(o.Handle), describe(o.Parent))
		}
		return fmt.Sprintf("%s %s -> %s before %s", o.Kind, describe(o.Handle), describe(o.Parent), describe(o.Anchor))
	case OpRemove:
		return fmt.Sprintf("%s %s", o.Kind, describe(o.Handle))
	case OpPatchProp:
		if IsEventProp(o.Name) {
			return fmt.Sprintf("%s %s %s", o.Kind, describe(o.Handle), o.Name)
		}
		return fmt.Sprintf("%s %s %s: %v -> %v", o.Kind, describe(o.Handle), o.Name, o.Prev, o.Next)
	}
	return o.Kind.String()
}

func describe(h Handle) string {
	if n, ok := h.(*Node); ok && n != nil {
		if n.Type == TextNode {
			return fmt.Sprintf("#%d%q", n.id, n.Text)
		}
		return fmt.Sprintf("#%d<%s>", n.id, n.Tag)
	}
	return fmt.Sprintf("%v", h)
}

// Recorder wraps an Adapter and records every call made through it. An
// Insert of a handle that is already attached is recorded as OpMove.
type Recorder struct {
	next     Adapter
	ops      []Op
	counts   [opKindCount]int
	attached map[Handle]bool
	logger   *slog.Logger
	onOp     func(Op)
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithOpLogger logs every op at debug level.
func WithOpLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// WithOpHook calls fn after every op.
func WithOpHook(fn func(Op)) RecorderOption {
	return func(r *Recorder) { r.onOp = fn }
}

// NewRecorder wraps next.
func NewRecorder(next Adapter, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		next:     next,
		attached: make(map[Handle]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach marks h as already attached, e.g. a container created outside
// the recorder.
func (r *Recorder) Attach(h Handle) {
	r.attached[h] = true
}

func (r *Recorder) record(op Op) {
	r.ops = append(r.ops, op)
	r.counts[op.Kind]++
	if r.logger != nil {
		r.logger.Debug("host op", "op", op.Kind.String(), "detail", op.String())
	}
	if r.onOp != nil {
		r.onOp(op)
	}
}

// Ops returns the recorded ops.
func (r *Recorder) Ops() []Op {
	return r.ops
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	return r.counts[kind]
}

// Total returns the number of recorded ops.
func (r *Recorder) Total() int {
	return len(r.ops)
}

// Creates returns the number of CreateElement and CreateText ops.
func (r *Recorder) Creates() int {
	return r.counts[OpCreateElement] + r.counts[OpCreateText]
}

// Reset clears recorded ops but keeps attachment tracking.
func (r *Recorder) Reset() {
	r.ops = nil
	r.counts = [opKindCount]int{}
}

// Summary returns "Kind=n" pairs for every non-zero count.
func (r *Recorder) Summary() string {
	var parts []string
	for k := OpKind(0); k < opKindCount; k++ {
		if r.counts[k] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, r.counts[k]))
		}
	}
	if len(parts) == 0 {
		return "no ops"
	}
	return strings.Join(parts, " ")
}

// CreateElement implements Adapter.
func (r *Recorder) CreateElement(tag string) Handle {
	h := r.next.CreateElement(tag)
	r.record(Op{Kind: OpCreateElement, Handle: h, Tag: tag})
	return h
}

// CreateText implements Adapter.
func (r *Recorder) CreateText(text string) Handle {
	h := r.next.CreateText(text)
	r.record(Op{Kind: OpCreateText, Handle: h, Text: text})
	return h
}

// SetText implements Adapter.
func (r *Recorder) SetText(h Handle, text string) {
	r.next.SetText(h, text)
	r.record(Op{Kind: OpSetText, Handle: h, Text: text})
}

// SetElementText implements Adapter.
func (r *Recorder) SetElementText(h Handle, text string) {
	r.next.SetElementText(h, text)
	r.record(Op{Kind: OpSetElementText, Handle: h, Text: text})
}

// Insert implements Adapter.
func (r *Recorder) Insert(h, parent, anchor Handle) {
	kind := OpInsert
	if r.attached[h] {
		kind = OpMove
	}
	r.next.Insert(h, parent, anchor)
	r.attached[h] = true
	r.record(Op{Kind: kind, Handle: h, Parent: parent, Anchor: anchor})
}

// Remove implements Adapter.
func (r *Recorder) Remove(h Handle) {
	r.next.Remove(h)
	delete(r.attached, h)
	r.record(Op{Kind: OpRemove, Handle: h})
}

// PatchProp implements Adapter.
func (r *Recorder) PatchProp(h Handle, name string, prev, next any) {
	r.next.PatchProp(h, name, prev, next)
	r.record(Op{Kind: OpPatchProp, Handle: h, Name: name, Prev: prev, Next: next})
}

// ParentNode implements Navigator when the wrapped adapter does.
func (r *Recorder) ParentNode(h Handle) Handle {
	if nav, ok := r.next.(Navigator); ok {
		return nav.ParentNode(h)
	}
	return nil
}

// NextSibling implements Navigator when the wrapped adapter does.
func (r *Recorder) NextSibling(h Handle) Handle {
	if nav, ok := r.next.(Navigator); ok {
		return nav.NextSibling(h)
	}
	return nil
}
