package protocol

import (
	"errors"
	"fmt"
)

// HostOpCode identifies a host operation on the wire.
type HostOpCode uint8

const (
	OpCreateElement  HostOpCode = 0x01
	OpCreateText     HostOpCode = 0x02
	OpSetText        HostOpCode = 0x03
	OpSetElementText HostOpCode = 0x04
	OpInsert         HostOpCode = 0x05
	OpRemove         HostOpCode = 0x06
	OpSetProp        HostOpCode = 0x07
	OpRemoveProp     HostOpCode = 0x08
	OpSetListener    HostOpCode = 0x09
	OpRemoveListener HostOpCode = 0x0A
	OpSetClass       HostOpCode = 0x0B
)

// String returns the op name.
func (op HostOpCode) String() string {
	switch op {
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
	case OpRemove:
		return "Remove"
	case OpSetProp:
		return "SetProp"
	case OpRemoveProp:
		return "RemoveProp"
	case OpSetListener:
		return "SetListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpSetClass:
		return "SetClass"
	default:
		return fmt.Sprintf("HostOpCode(0x%02x)", uint8(op))
	}
}

// ErrUnknownHostOp is returned when decoding an unrecognized op code.
var ErrUnknownHostOp = errors.New("protocol: unknown host op")

// HostOp is one host mutation. Which fields are meaningful depends on Op.
type HostOp struct {
	Op     HostOpCode
	ID     uint32 // node the op applies to
	Parent uint32 // OpInsert
	Anchor uint32 // OpInsert; 0 appends
	Tag    string // OpCreateElement
	Text   string // OpCreateText, OpSetText, OpSetElementText
	Name   string // prop and listener ops
	Value  string // OpSetProp, OpSetClass
}

// String formats the op for logs.
func (o HostOp) String() string {
	switch o.Op {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", o.Op, o.ID, o.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		return fmt.Sprintf("%s #%d %q", o.Op, o.ID, o.Text)
	case OpInsert:
		return fmt.Sprintf("%s #%d -> #%d before #%d", o.Op, o.ID, o.Parent, o.Anchor)
	case OpSetProp, OpSetClass:
		return fmt.Sprintf("%s #%d %s=%q", o.Op, o.ID, o.Name, o.Value)
	case OpRemoveProp, OpSetListener, OpRemoveListener:
		return fmt.Sprintf("%s #%d %s", o.Op, o.ID, o.Name)
	}
	return fmt.Sprintf("%s #%d", o.Op, o.ID)
}

// OpBatch is the payload of a FrameOps frame.
type OpBatch struct {
	Seq uint64
	Ops []HostOp
}

// EncodeOpBatch encodes a batch to bytes.
func EncodeOpBatch(b *OpBatch) []byte {
	e := NewEncoder()
	EncodeOpBatchTo(e, b)
	return e.Bytes()
}

// EncodeOpBatchTo encodes a batch using the provided encoder.
func EncodeOpBatchTo(e *Encoder, b *OpBatch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Ops)))
	for i := range b.Ops {
		EncodeHostOpTo(e, &b.Ops[i])
	}
}

// EncodeHostOpTo encodes a single op.
func EncodeHostOpTo(e *Encoder, op *HostOp) {
	e.WriteByte(byte(op.Op))
	e.WriteUvarint(uint64(op.ID))
	switch op.Op {
	case OpCreateElement:
		e.WriteString(op.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		e.WriteString(op.Text)
	case OpInsert:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Anchor))
	case OpSetProp, OpSetClass:
		e.WriteString(op.Name)
		e.WriteString(op.Value)
	case OpRemoveProp, OpSetListener, OpRemoveListener:
		e.WriteString(op.Name)
	case OpRemove:
		// ID only
	}
}

// DecodeOpBatch decodes a batch from bytes.
func DecodeOpBatch(data []byte) (*OpBatch, error) {
	return DecodeOpBatchFrom(NewDecoder(data))
}

// DecodeOpBatchFrom decodes a batch using the provided decoder.
func DecodeOpBatchFrom(d *Decoder) (*OpBatch, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	b := &OpBatch{Seq: seq, Ops: make([]HostOp, 0, count)}
	for i := 0; i < count; i++ {
		op, err := DecodeHostOpFrom(d)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		b.Ops = append(b.Ops, op)
	}
	return b, nil
}

// DecodeHostOpFrom decodes a single op.
func DecodeHostOpFrom(d *Decoder) (HostOp, error) {
	var op HostOp
	code, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Op = HostOpCode(code)
	if op.ID, err = d.ReadUint32v(); err != nil {
		return op, err
	}
	switch op.Op {
	case OpCreateElement:
		op.Tag, err = d.ReadString()
	case OpCreateText, OpSetText, OpSetElementText:
		op.Text, err = d.ReadString()
	case OpInsert:
		if op.Parent, err = d.ReadUint32v(); err == nil {
			op.Anchor, err = d.ReadUint32v()
		}
	case OpSetProp, OpSetClass:
		if op.Name, err = d.ReadString(); err == nil {
			op.Value, err = d.ReadString()
		}
	case OpRemoveProp, OpSetListener, OpRemoveListener:
		op.Name, err = d.ReadString()
	case OpRemove:
	default:
		return op, fmt.Errorf("%w: 0x%02x", ErrUnknownHostOp, code)
	}
	return op, err
}
