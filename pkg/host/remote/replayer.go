package remote

import (
	"errors"
	"fmt"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/protocol"
)

// ErrOutOfOrder is returned when a batch arrives with an unexpected
// sequence number.
var ErrOutOfOrder = errors.New("remote: batch out of order")

// Replayer applies wire ops to a local host adapter. It is the client
// half of an Adapter.
type Replayer struct {
	target  host.Adapter
	nodes   map[uint32]host.Handle
	lastSeq uint64
	onEvent func(target uint32, event string, args ...any)
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// OnEvent installs fn as the listener for every SetListener op. Listeners
// call fn with the target ID and event name.
func OnEvent(fn func(target uint32, event string, args ...any)) ReplayerOption {
	return func(r *Replayer) { r.onEvent = fn }
}

// NewReplayer creates a replayer applying ops to target, with root as the
// node for RootID.
func NewReplayer(target host.Adapter, root host.Handle, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		target: target,
		nodes:  map[uint32]host.Handle{RootID: root},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle returns the local handle for id, or nil.
func (r *Replayer) Handle(id uint32) host.Handle {
	return r.nodes[id]
}

// ApplyFrame decodes and applies a FrameOps frame. Other frame types are
// ignored.
func (r *Replayer) ApplyFrame(f *protocol.Frame) error {
	if f.Type != protocol.FrameOps {
		return nil
	}
	b, err := protocol.DecodeOpBatch(f.Payload)
	if err != nil {
		return fmt.Errorf("remote: decode ops: %w", err)
	}
	return r.Apply(b)
}

// Apply applies a batch. Batches must arrive in sequence.
func (r *Replayer) Apply(b *protocol.OpBatch) error {
	if b.Seq != r.lastSeq+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, b.Seq, r.lastSeq+1)
	}
	for i := range b.Ops {
		if err := r.apply(&b.Ops[i]); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, b.Ops[i], err)
		}
	}
	r.lastSeq = b.Seq
	return nil
}

func (r *Replayer) apply(op *protocol.HostOp) error {
	if op.Op == protocol.OpCreateElement {
		r.nodes[op.ID] = r.target.CreateElement(op.Tag)
		return nil
	}
	if op.Op == protocol.OpCreateText {
		r.nodes[op.ID] = r.target.CreateText(op.Text)
		return nil
	}

	h, ok := r.nodes[op.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, op.ID)
	}

	switch op.Op {
	case protocol.OpSetText:
		r.target.SetText(h, op.Text)
	case protocol.OpSetElementText:
		r.target.SetElementText(h, op.Text)
	case protocol.OpInsert:
		parent, ok := r.nodes[op.Parent]
		if !ok {
			return fmt.Errorf("%w: parent %d", ErrUnknownNode, op.Parent)
		}
		var anchor host.Handle
		if op.Anchor != 0 {
			if anchor, ok = r.nodes[op.Anchor]; !ok {
				return fmt.Errorf("%w: anchor %d", ErrUnknownNode, op.Anchor)
			}
		}
		r.target.Insert(h, parent, anchor)
	case protocol.OpRemove:
		r.target.Remove(h)
		delete(r.nodes, op.ID)
	case protocol.OpSetProp:
		var v any = op.Value
		if op.Value == "" {
			v = true
		}
		r.target.PatchProp(h, op.Name, nil, v)
	case protocol.OpRemoveProp:
		r.target.PatchProp(h, op.Name, nil, nil)
	case protocol.OpSetClass:
		var v any
		if op.Value != "" {
			v = op.Value
		}
		r.target.PatchProp(h, "class", nil, v)
	case protocol.OpSetListener:
		id, event := op.ID, op.Name
		r.target.PatchProp(h, "on"+event, nil, func(args ...any) {
			if r.onEvent != nil {
				r.onEvent(id, event, args...)
			}
		})
	case protocol.OpRemoveListener:
		r.target.PatchProp(h, "on"+op.Name, nil, nil)
	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnknownHostOp, op.Op)
	}
	return nil
}
