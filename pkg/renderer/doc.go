// Package renderer reconciles VNode trees against a host.Adapter.
//
// A Renderer keeps the last tree rendered into each container. Render
// diffs the new tree against it and issues the smallest set of host
// operations it can: props are patched one by one, text is only rewritten
// when it changed, and keyed children are moved only when they fall off
// the longest increasing subsequence of their old positions.
//
// # Components
//
// Stateful components are described by a *Definition. Each mount creates
// an Instance with reactive state, shallow-reactive props and a render
// effect. The effect does not re-render synchronously; it queues itself on
// the scheduler so any number of changes between flushes cost one render.
//
//	counter := &renderer.Definition{
//	    Name: "Counter",
//	    Data: func() map[string]any { return map[string]any{"count": 0} },
//	    Render: func(c *renderer.RenderContext) *vdom.VNode {
//	        return vdom.Button(
//	            vdom.OnClick(func() { c.Set("count", c.Int("count")+1) }),
//	            vdom.Textf("%d", c.Int("count")),
//	        )
//	    },
//	}
//
//	r := renderer.New(adapter)
//	r.Render(vdom.Comp(counter), container)
//
// KeepAlive caches component instances across switches instead of
// destroying them. DefineAsync wraps a loader that runs off the render
// goroutine and hands its result back through the scheduler host.
//
// A Renderer is not safe for concurrent use. All calls, and all host
// tasks it schedules, must run on one goroutine.
package renderer
