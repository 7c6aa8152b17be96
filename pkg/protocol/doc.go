// Package protocol implements the binary wire format used to stream host
// operations to a remote tree and client events back.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): first frame, carries the root handle ID
//   - FrameEvent (0x01): client → server events
//   - FrameOps (0x02): server → client host operation batches
//   - FrameError (0x05): error or diagnostic message
//
// # Encoding
//
//   - Varint: compact encoding for handle IDs and counts (protobuf-style)
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: fixed-width integers
//
// Handle IDs are assigned by the sender. ID 0 means "none" (for example an
// Insert without anchor) and ID 1 is the remote root container.
package protocol
