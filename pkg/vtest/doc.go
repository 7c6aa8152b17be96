// Package vtest provides a test harness for rendering VNode trees into an
// in-memory host and asserting on the result.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t)
//	    h.Render(vdom.Comp(Counter))
//	    vtest.ExpectHTML(t, h, "<button>0</button>")
//
//	    h.Find("button").Dispatch("click")
//	    h.Flush()
//	    vtest.ExpectHTML(t, h, "<button>1</button>")
//	}
//
// # Counting Host Operations
//
// Every adapter call goes through a host.Recorder, so tests can assert on
// how much work a render did:
//
//	h.ResetOps()
//	h.Render(next)
//	if n := h.Ops.Count(host.OpMove); n != 1 {
//	    t.Errorf("moves = %d, want 1", n)
//	}
//
// # Time and Async Loads
//
// The harness runs on a scheduler.Manual. Advance moves virtual time;
// AwaitTask waits for work handed back from loader goroutines.
package vtest
