// Package host defines the contract between the reconciler and the tree it
// mutates.
//
// The reconciler never touches a concrete UI tree. Every mutation goes
// through an Adapter, which hands out opaque Handles. This package also
// ships Memory, an in-memory tree used by tests and tools, and Recorder,
// which wraps any Adapter and logs the calls made through it.
package host
