package protocol

// Event is a client event targeting a host node. It is the payload of a
// FrameEvent frame.
type Event struct {
	Seq     uint64
	Target  uint32
	Name    string // event name without the "on" prefix, e.g. "click"
	Payload string
}

// EncodeEvent encodes an event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(uint64(ev.Target))
	e.WriteString(ev.Name)
	e.WriteString(ev.Payload)
	return e.Bytes()
}

// DecodeEvent decodes an event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Target, err = d.ReadUint32v(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Payload, err = d.ReadString(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Hello is the payload of the first server frame.
type Hello struct {
	Version uint64
	Root    uint32
}

// ProtocolVersion is the current wire version.
const ProtocolVersion = 1

// EncodeHello encodes a hello payload.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteUvarint(h.Version)
	e.WriteUvarint(uint64(h.Root))
	return e.Bytes()
}

// DecodeHello decodes a hello payload.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	v, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	root, err := d.ReadUint32v()
	if err != nil {
		return nil, err
	}
	return &Hello{Version: v, Root: root}, nil
}
