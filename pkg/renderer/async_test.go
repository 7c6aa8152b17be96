package renderer_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/pkg/renderer"
	"github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

const await = 2 * time.Second

func staticComponent(name, text string) *renderer.Functional {
	return &renderer.Functional{
		Name:   name,
		Props:  []string{"label"},
		Render: func(c *renderer.RenderContext) *vdom.VNode {
			label, _ := c.Props().Lookup("label")
			s, _ := label.(string)
			return vdom.P(text + s)
		},
	}
}

// gatedLoader returns comp once release is closed, ignoring cancellation.
func gatedLoader(comp vdom.Component, release <-chan struct{}) renderer.Loader {
	return func(context.Context) (vdom.Component, error) {
		<-release
		return comp, nil
	}
}

func TestAsyncResolves(t *testing.T) {
	release := make(chan struct{})
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Loader:           gatedLoader(staticComponent("Loaded", "loaded"), release),
		LoadingComponent: staticComponent("Loading", "loading"),
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async, vdom.Prop("label", "!")))
	vtest.ExpectHTML(t, h, "<p>loading</p>")

	close(release)
	if !h.AwaitTask(await) {
		t.Fatal("loader result never arrived")
	}
	vtest.ExpectHTML(t, h, "<p>loaded!</p>")
	if async.Resolved() == nil {
		t.Error("Resolved() = nil after load")
	}

	// Later mounts render the resolved component immediately.
	h2 := vtest.New(t)
	h2.Render(vdom.Comp(async))
	vtest.ExpectHTML(t, h2, "<p>loaded</p>")
}

func TestAsyncDelayPostponesLoading(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Loader:           gatedLoader(staticComponent("Loaded", "loaded"), release),
		LoadingComponent: staticComponent("Loading", "loading"),
		Delay:            200 * time.Millisecond,
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async))
	vtest.ExpectHTML(t, h, "")

	h.Advance(100 * time.Millisecond)
	vtest.ExpectHTML(t, h, "")

	h.Advance(100 * time.Millisecond)
	vtest.ExpectHTML(t, h, "<p>loading</p>")
}

func TestAsyncTimeoutBeatsLateSuccess(t *testing.T) {
	release := make(chan struct{})
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Name:           "Slow",
		Loader:         gatedLoader(staticComponent("Loaded", "loaded"), release),
		ErrorComponent: staticComponent("Failed", "failed"),
		Timeout:        time.Second,
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async))
	h.Advance(time.Second)

	vtest.ExpectHTML(t, h, "<p>failed</p>")
	if !h.HasDiagnostic("R007") {
		t.Error("expected R007 on timeout")
	}

	close(release)
	if !h.AwaitTask(await) {
		t.Fatal("late loader result never arrived")
	}
	vtest.ExpectHTML(t, h, "<p>failed</p>")
	if async.Resolved() != nil {
		t.Error("late success should not resolve the component")
	}
}

func TestAsyncLoaderError(t *testing.T) {
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Name: "Broken",
		Loader: func(context.Context) (vdom.Component, error) {
			return nil, errors.New("network down")
		},
		ErrorComponent: &renderer.Functional{
			Name:  "Error",
			Props: []string{"error"},
			Render: func(c *renderer.RenderContext) *vdom.VNode {
				err, _ := c.Get("error").(error)
				return vdom.P(vdom.Class("error"), errors.Unwrap(err).Error())
			},
		},
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async))
	if !h.AwaitTask(await) {
		t.Fatal("loader result never arrived")
	}

	vtest.ExpectHTML(t, h, `<p class="error">network down</p>`)
	if !h.HasDiagnostic("R006") {
		t.Error("expected R006 on loader failure")
	}
}

func TestAsyncNilComponentFails(t *testing.T) {
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Loader: func(context.Context) (vdom.Component, error) { return nil, nil },
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async))
	h.AwaitTask(await)

	for _, d := range h.Diagnostics() {
		if d.Code == "R006" && errors.Is(d.Err, renderer.ErrNoComponent) {
			return
		}
	}
	t.Errorf("diagnostics = %+v, want R006 wrapping ErrNoComponent", h.Diagnostics())
}

func TestAsyncRetry(t *testing.T) {
	var calls atomic.Int32
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Loader: func(context.Context) (vdom.Component, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("flaky")
			}
			return staticComponent("Loaded", "loaded"), nil
		},
		OnError: func(_ error, retry, fail func(), attempts int) {
			if attempts < 3 {
				retry()
				return
			}
			fail()
		},
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async))
	h.AwaitTask(await)
	h.AwaitTask(await)

	vtest.ExpectHTML(t, h, "<p>loaded</p>")
	if n := calls.Load(); n != 2 {
		t.Errorf("loader calls = %d, want 2", n)
	}
}

func TestAsyncUnmountCancelsLoad(t *testing.T) {
	cancelled := make(chan struct{})
	async := renderer.DefineAsync(renderer.AsyncOptions{
		Loader: func(ctx context.Context) (vdom.Component, error) {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		},
		Timeout: time.Minute,
	})

	h := vtest.New(t)
	h.Render(vdom.Comp(async))
	h.Unmount()

	select {
	case <-cancelled:
	case <-time.After(await):
		t.Fatal("loader context was not cancelled on unmount")
	}
	if n := h.Clock.PendingTimers(); n != 0 {
		t.Errorf("PendingTimers() = %d, want 0", n)
	}
	h.AwaitTask(await)
	if h.HasDiagnostic("R006") {
		t.Error("result after unmount should be dropped")
	}
}
