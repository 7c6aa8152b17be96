package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/renderer"
	. "github.com/vango-dev/reconcile/pkg/vdom"
)

// demo is the component tree served to each connection. Every session
// gets its own demo so async loads and timers are not shared.
type demo struct {
	tick    time.Duration
	delay   time.Duration
	timeout time.Duration

	shell       *renderer.Definition
	counter     *renderer.Definition
	leaderboard *renderer.Definition
	report      *renderer.AsyncComponent
}

var demoPlayers = []string{"ada", "grace", "linus", "ken", "barbara", "dennis"}

func newDemo(cfg *config.Config) *demo {
	d := &demo{
		tick:    cfg.TickInterval(),
		delay:   cfg.LoadDelay(),
		timeout: cfg.LoadTimeout(),
	}
	d.counter = d.newCounter()
	d.leaderboard = d.newLeaderboard()
	d.report = d.newReport()
	d.shell = d.newShell()
	return d
}

// App returns the root vnode.
func (d *demo) App() *VNode {
	return Comp(d.shell)
}

func (d *demo) newShell() *renderer.Definition {
	tabs := []struct {
		name string
		comp Component
	}{
		{"counter", d.counter},
		{"leaderboard", d.leaderboard},
		{"report", d.report},
	}

	return &renderer.Definition{
		Name: "Shell",
		Data: func() map[string]any {
			return map[string]any{"tab": "counter"}
		},
		Render: func(c *renderer.RenderContext) *VNode {
			current := c.String("tab")

			var nav []*VNode
			var active Component
			for _, t := range tabs {
				name := t.name
				if name == current {
					active = t.comp
				}
				nav = append(nav, Button(
					Key(name),
					Class(tabClass(name == current)),
					OnClick(func() { c.Set("tab", name) }),
					Text(name),
				))
			}

			return Div(Class("demo"),
				H1(Content("reconcile")),
				Nav(nav),
				Main(renderer.KeepAlive(Comp(active))),
			)
		},
	}
}

func tabClass(active bool) string {
	if active {
		return "tab active"
	}
	return "tab"
}

func (d *demo) newCounter() *renderer.Definition {
	return &renderer.Definition{
		Name: "Counter",
		Data: func() map[string]any {
			return map[string]any{"count": 0}
		},
		Render: func(c *renderer.RenderContext) *VNode {
			n := c.Int("count")
			return Section(Class("counter"),
				P(Textf("clicked %d times", n)),
				Button(OnClick(func() { c.Set("count", n+1) }), Content("+1")),
				Button(Disabled(n == 0), OnClick(func() { c.Set("count", 0) }), Content("reset")),
			)
		},
	}
}

// newLeaderboard rotates a keyed list every tick, so each update moves
// one row.
func (d *demo) newLeaderboard() *renderer.Definition {
	return &renderer.Definition{
		Name: "Leaderboard",
		Setup: func(_ *reactive.Store, sc *renderer.SetupContext) renderer.SetupResult {
			order := reactive.NewSignal(append([]string(nil), demoPlayers...))
			round := reactive.NewSignal(0)

			host := sc.Scheduler()
			var stop func() bool
			var rotate func()
			rotate = func() {
				cur := order.Peek()
				next := append(append([]string(nil), cur[1:]...), cur[0])
				reactive.Batch(func() {
					order.Set(next)
					round.Update(func(n int) int { return n + 1 })
				})
				stop = host.AfterFunc(d.tick, rotate).Stop
			}
			sc.OnMounted(func() {
				stop = host.AfterFunc(d.tick, rotate).Stop
			})
			sc.OnUnmounted(func() {
				if stop != nil {
					stop()
				}
			})

			return renderer.SetupResult{
				Bindings: map[string]any{"order": order, "round": round},
			}
		},
		Render: func(c *renderer.RenderContext) *VNode {
			order, _ := c.Get("order").([]string)
			return Section(Class("leaderboard"),
				P(Textf("round %d", c.Int("round"))),
				Ol(Range(order, func(name string, i int) *VNode {
					return Li(Key(name), Text(name))
				})),
			)
		},
	}
}

// newReport defines an async panel whose loader takes the configured
// delay. A delay past the timeout shows the error component.
func (d *demo) newReport() *renderer.AsyncComponent {
	loaded := &renderer.Functional{
		Name: "Report",
		Render: func(c *renderer.RenderContext) *VNode {
			return Section(Class("report"),
				P(Content("Report loaded.")),
				Ul(
					Li(Textf("load delay: %s", d.delay)),
					Li(Textf("timeout: %s", d.timeout)),
				),
			)
		},
	}

	return renderer.DefineAsync(renderer.AsyncOptions{
		Name: "AsyncReport",
		Loader: func(ctx context.Context) (Component, error) {
			t := time.NewTimer(d.delay)
			defer t.Stop()
			select {
			case <-t.C:
				return loaded, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		Timeout: d.timeout,
		Delay:   100 * time.Millisecond,
		LoadingComponent: &renderer.Functional{
			Name: "ReportLoading",
			Render: func(c *renderer.RenderContext) *VNode {
				return P(Class("loading"), Content("Loading report..."))
			},
		},
		ErrorComponent: &renderer.Functional{
			Name:  "ReportError",
			Props: []string{"error"},
			Render: func(c *renderer.RenderContext) *VNode {
				err, _ := c.Props().Lookup("error")
				return P(Class("error"), Content(fmt.Sprint(err)))
			},
		},
	})
}
