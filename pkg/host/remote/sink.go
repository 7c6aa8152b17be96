package remote

import (
	"io"
	"sync"

	"github.com/vango-dev/reconcile/pkg/protocol"
)

// Sink receives encoded frames.
type Sink interface {
	SendFrame(f *protocol.Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f *protocol.Frame) error

// SendFrame implements Sink.
func (fn SinkFunc) SendFrame(f *protocol.Frame) error {
	return fn(f)
}

// WriterSink writes frames to an io.Writer with protocol.WriteFrame.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// SendFrame implements Sink.
func (s *WriterSink) SendFrame(f *protocol.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.WriteFrame(s.w, f)
}

// Buffer collects frames in memory.
type Buffer struct {
	mu     sync.Mutex
	frames []*protocol.Frame
}

// SendFrame implements Sink.
func (b *Buffer) SendFrame(f *protocol.Frame) error {
	b.mu.Lock()
	b.frames = append(b.frames, f)
	b.mu.Unlock()
	return nil
}

// Take returns the collected frames and clears the buffer.
func (b *Buffer) Take() []*protocol.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	frames := b.frames
	b.frames = nil
	return frames
}
