// Package remote implements a host.Adapter whose host lives on the other
// side of a connection.
//
// An Adapter keeps a shadow tree of the host in a host.Memory so the
// renderer can navigate it, and records every mutation as a
// protocol.HostOp addressed by a numeric node ID. Flush sends the recorded
// ops to a Sink as FrameOps frames. The client applies them with a
// Replayer and sends events back as FrameEvent frames, which HandleFrame
// dispatches to the listeners held in the shadow tree.
//
// Node ID 1 is the root container. IDs of removed subtrees are released
// and never reused.
package remote
