// Package errors provides the coded diagnostics reported by the reconciler.
//
// Nothing the reconciler reports is fatal. Usage mistakes (duplicate keys,
// writes to props, emits without a listener), structural errors (unknown
// VNode kinds), async loader failures and panics inside reactive effects are
// all turned into a ReconcileError, logged, counted and then execution
// continues.
//
// # Error Categories
//
//   - usage: the caller did something the runtime tolerates but should not
//   - structural: the VNode tree cannot be interpreted
//   - async: an async component failed to load or timed out
//   - effect: a reactive effect panicked
//   - scheduler: the job queue refused to keep running a job
//   - config: configuration files failed to load or validate
//   - protocol: wire frames could not be encoded or applied
//
// # Error Codes
//
// Each code ("R001", "C120", ...) maps to a short message, a longer detail
// and a documentation anchor.
//
// # Usage
//
//	err := errors.New("R001").
//	    With("key", "a").
//	    WithSuggestion("Give every sibling a distinct key")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Duplicate key among siblings
//	//
//	//   key=a
//	//
//	//   Two or more children of the same parent share a key. ...
package errors
