package renderer_test

import (
	"strings"
	"testing"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

func list(keys ...string) *vdom.VNode {
	items := make([]*vdom.VNode, 0, len(keys))
	for _, k := range keys {
		items = append(items, vdom.Li(vdom.Key(k), k))
	}
	return vdom.Ul(items)
}

func listHTML(keys ...string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, k := range keys {
		b.WriteString("<li>" + k + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func TestRenderMountsTree(t *testing.T) {
	h := vtest.New(t)
	h.Render(vdom.Div(vdom.Class("card"), vdom.ID("x"),
		vdom.H1("Title"),
		vdom.P(vdom.Content("body")),
	))
	vtest.ExpectHTML(t, h, `<div class="card" id="x"><h1>Title</h1><p>body</p></div>`)
}

func TestRenderSameTreeIsIdempotent(t *testing.T) {
	tree := func() *vdom.VNode {
		return vdom.Div(vdom.Class("a"), vdom.Disabled(true),
			vdom.Span("one"),
			vdom.Fragment(vdom.Text("two"), vdom.Em("three")),
			list("a", "b", "c"),
		)
	}

	h := vtest.New(t)
	h.Render(tree())
	want := h.HTML()

	h.ResetOps()
	h.Render(tree())

	if n := h.Ops.Total(); n != 0 {
		t.Errorf("second render issued %d ops (%s), want 0", n, h.Ops.Summary())
	}
	vtest.ExpectHTML(t, h, want)
}

func TestRenderNilUnmounts(t *testing.T) {
	h := vtest.New(t)
	h.Render(vdom.Div(vdom.Span("a"), vdom.Span("b")))
	h.Unmount()

	vtest.ExpectHTML(t, h, "")
	if h.Renderer.Root(h.Container) != nil {
		t.Error("Root() should be nil after unmount")
	}
}

func TestPatchProps(t *testing.T) {
	h := vtest.New(t)
	h.Render(vdom.Div(vdom.Class("a"), vdom.ID("x"), vdom.Disabled(true)))

	h.ResetOps()
	h.Render(vdom.Div(vdom.Class("b"), vdom.Disabled(true)))

	vtest.ExpectHTML(t, h, `<div class="b" disabled></div>`)
	vtest.ExpectOps(t, h, host.OpPatchProp, 2)
}

func TestPatchText(t *testing.T) {
	h := vtest.New(t)
	h.Render(vdom.P("hello"))

	h.ResetOps()
	h.Render(vdom.P("world"))

	vtest.ExpectHTML(t, h, "<p>world</p>")
	vtest.ExpectOps(t, h, host.OpSetText, 1)
	if h.Ops.Creates() != 0 {
		t.Errorf("Creates() = %d, want 0", h.Ops.Creates())
	}
}

func TestPatchReplacesDifferentType(t *testing.T) {
	h := vtest.New(t)
	h.Render(vdom.Div(vdom.Span("a"), vdom.P("mid"), vdom.Span("c")))
	h.Render(vdom.Div(vdom.Span("a"), vdom.Em("mid"), vdom.Span("c")))

	vtest.ExpectHTML(t, h, "<div><span>a</span><em>mid</em><span>c</span></div>")
}

func TestPatchChildrenTransitions(t *testing.T) {
	h := vtest.New(t)

	steps := []struct {
		node *vdom.VNode
		want string
	}{
		{vdom.Div(vdom.Content("hi")), "<div>hi</div>"},
		{vdom.Div(vdom.Span("a"), vdom.Span("b")), "<div><span>a</span><span>b</span></div>"},
		{vdom.Div(vdom.Content("text")), "<div>text</div>"},
		{vdom.Div(), "<div></div>"},
		{vdom.Div(vdom.Span("c")), "<div><span>c</span></div>"},
		{vdom.Div(), "<div></div>"},
		{vdom.Div(vdom.Content("x")), "<div>x</div>"},
		{vdom.Div(vdom.Content("")), "<div></div>"},
	}

	for i, s := range steps {
		h.Render(s.node)
		if got := h.HTML(); got != s.want {
			t.Errorf("step %d: HTML() = %s, want %s", i, got, s.want)
		}
	}
}

func TestKeyedChildren(t *testing.T) {
	tests := []struct {
		name  string
		from  []string
		to    []string
		moves int
	}{
		{"append", []string{"a", "b"}, []string{"a", "b", "c"}, 0},
		{"prepend", []string{"b", "c"}, []string{"a", "b", "c"}, 0},
		{"insert middle", []string{"a", "c"}, []string{"a", "b", "c"}, 0},
		{"remove head", []string{"a", "b", "c"}, []string{"b", "c"}, 0},
		{"remove middle", []string{"a", "b", "c"}, []string{"a", "c"}, 0},
		{"rotate right", []string{"a", "b", "c", "d"}, []string{"d", "a", "b", "c"}, 1},
		{"rotate left", []string{"a", "b", "c", "d"}, []string{"b", "c", "d", "a"}, 1},
		{"swap", []string{"a", "b", "c", "d"}, []string{"a", "c", "b", "d"}, 1},
		{"reverse", []string{"a", "b", "c", "d", "e"}, []string{"e", "d", "c", "b", "a"}, 4},
		{"new in window without moves", []string{"a", "b", "c"}, []string{"a", "x", "b", "y", "c"}, 0},
		{"replace all", []string{"a", "b"}, []string{"c", "d"}, 0},
		{"mixed", []string{"a", "b", "c", "d", "e", "f", "g"}, []string{"a", "c", "d", "b", "h", "f", "g"}, 1},
		{"to empty", []string{"a", "b"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := vtest.New(t)
			h.Render(list(tt.from...))

			h.ResetOps()
			h.Render(list(tt.to...))

			vtest.ExpectHTML(t, h, listHTML(tt.to...))
			vtest.ExpectOps(t, h, host.OpMove, tt.moves)
		})
	}
}

// insertsInto returns the recorded first-time inserts into parent.
func insertsInto(h *vtest.Harness, parent *host.Node) []host.Op {
	var ops []host.Op
	for _, op := range h.Ops.Ops() {
		if op.Kind == host.OpInsert && op.Parent == host.Handle(parent) {
			ops = append(ops, op)
		}
	}
	return ops
}

func TestKeyedChildrenAppendPrependAnchors(t *testing.T) {
	tests := []struct {
		name   string
		from   []string
		to     []string
		anchor int // index in the new list of the anchor's item, -1 for append
	}{
		{"append", []string{"a", "b"}, []string{"a", "b", "c"}, -1},
		{"prepend", []string{"b", "c"}, []string{"a", "b", "c"}, 1},
		{"insert middle", []string{"a", "c"}, []string{"a", "b", "c"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := vtest.New(t)
			h.Render(list(tt.from...))

			h.ResetOps()
			h.Render(list(tt.to...))

			ul := h.Find("ul")
			// One <li> and its text node.
			if n := h.Ops.Creates(); n != 2 {
				t.Errorf("Creates() = %d, want 2", n)
			}
			inserts := insertsInto(h, ul)
			if len(inserts) != 1 {
				t.Fatalf("inserts into <ul> = %d, want 1 (%s)", len(inserts), h.Ops.Summary())
			}
			var want host.Handle
			if tt.anchor >= 0 {
				want = ul.Children[tt.anchor]
			}
			if got := inserts[0].Anchor; got != want {
				t.Errorf("insert anchor = %v, want %v", got, want)
			}
		})
	}
}

func TestKeyedFragmentsMoveWithTheirAnchors(t *testing.T) {
	group := func(key string, items ...string) *vdom.VNode {
		var children []*vdom.VNode
		for _, it := range items {
			children = append(children, vdom.Li(it))
		}
		return vdom.Fragment(vdom.Key(key), children)
	}

	h := vtest.New(t)
	h.Render(vdom.Ul(group("a", "a1"), group("b"), group("c", "c1", "c2")))
	vtest.ExpectHTML(t, h, "<ul><li>a1</li><li>c1</li><li>c2</li></ul>")

	h.Render(vdom.Ul(group("c", "c1", "c2"), group("b"), group("a", "a1")))
	vtest.ExpectHTML(t, h, "<ul><li>c1</li><li>c2</li><li>a1</li></ul>")

	// The empty group kept its place between c and a.
	h.Render(vdom.Ul(group("c", "c1", "c2"), group("b", "b1"), group("a", "a1")))
	vtest.ExpectHTML(t, h, "<ul><li>c1</li><li>c2</li><li>b1</li><li>a1</li></ul>")

	h.Render(vdom.Ul(group("a", "a1")))
	vtest.ExpectHTML(t, h, "<ul><li>a1</li></ul>")
	if n := len(h.Find("ul").Children); n != 2 {
		t.Errorf("len(<ul>.Children) = %d, want 2 (item and fragment end)", n)
	}
}

func TestKeyedChildrenReuseHostNodes(t *testing.T) {
	h := vtest.New(t)
	h.Render(list("a", "b", "c", "d"))
	before := h.Find("ul").Children[3]

	h.ResetOps()
	h.Render(list("d", "a", "b", "c"))

	if h.Ops.Creates() != 0 {
		t.Errorf("Creates() = %d, want 0", h.Ops.Creates())
	}
	if got := h.Find("ul").Children[0]; got != before {
		t.Error("moved item should keep its host node")
	}
}

func TestKeyedChildrenDuplicateKey(t *testing.T) {
	h := vtest.New(t)
	h.Render(list("a", "b"))
	h.Render(vdom.Ul(
		vdom.Li(vdom.Key("b"), "b"),
		vdom.Li(vdom.Key("x"), "x"),
		vdom.Li(vdom.Key("x"), "x2"),
	))

	if !h.HasDiagnostic("R001") {
		t.Error("expected R001 for duplicate key")
	}
	vtest.ExpectHTML(t, h, "<ul><li>b</li><li>x</li><li>x2</li></ul>")
}

func TestUnkeyedChildrenPatchInPlace(t *testing.T) {
	h := vtest.New(t)
	h.Render(vdom.Ul(vdom.Li("a"), vdom.Li("b")))

	h.ResetOps()
	h.Render(vdom.Ul(vdom.Li("b"), vdom.Li("a"), vdom.Li("c")))

	vtest.ExpectHTML(t, h, "<ul><li>b</li><li>a</li><li>c</li></ul>")
	vtest.ExpectOps(t, h, host.OpSetText, 2)
	vtest.ExpectOps(t, h, host.OpMove, 0)
}

func TestFragmentChildrenKeepSiblingOrder(t *testing.T) {
	items := func(keys ...string) *vdom.VNode {
		var children []*vdom.VNode
		for _, k := range keys {
			children = append(children, vdom.Li(vdom.Key(k), k))
		}
		return vdom.Ul(
			vdom.Li(vdom.Key("head"), "head"),
			vdom.Fragment(vdom.Key("items"), children),
			vdom.Li(vdom.Key("tail"), "tail"),
		)
	}

	h := vtest.New(t)
	h.Render(items("a", "b"))
	h.Render(items("b", "a", "c"))
	vtest.ExpectHTML(t, h, "<ul><li>head</li><li>b</li><li>a</li><li>c</li><li>tail</li></ul>")

	h.Render(items())
	vtest.ExpectHTML(t, h, "<ul><li>head</li><li>tail</li></ul>")

	h.Render(items("z"))
	vtest.ExpectHTML(t, h, "<ul><li>head</li><li>z</li><li>tail</li></ul>")
}

func TestRenderToString(t *testing.T) {
	got := vtest.RenderToString(vdom.Div(vdom.Class("x"), vdom.Text("a < b")))
	want := `<div class="x">a &lt; b</div>`
	if got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}
}
