package vdom

import (
	"testing"
)

type testComp struct{ name string }

func (c *testComp) ComponentName() string { return c.name }

type asyncComp struct{ testComp }

func (c *asyncComp) VNodeKind() VKind { return KindAsync }

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{KindAsync, "Async"},
		{KindKeepAlive, "KeepAlive"},
		{VKind(42), "VKind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
	if KindText.IsComponent() || !KindKeepAlive.IsComponent() {
		t.Error("IsComponent() misclassifies kinds")
	}
}

func TestCreateElement(t *testing.T) {
	handler := func() {}
	node := Ul(
		Class("list", "big"),
		ID("items"),
		Key("root"),
		OnClick(handler),
		nil,
		Li(Key("a"), "A"),
		[]*VNode{Li(Key("b")), nil},
		"tail",
	)

	if node.Kind != KindElement || node.Tag != "ul" {
		t.Fatalf("node = %v", node)
	}
	if node.Key != "root" {
		t.Errorf("Key = %q, want root", node.Key)
	}
	if node.Props.Has("key") {
		t.Error("key must not be stored as a prop")
	}
	if got := node.Props.Keys(); len(got) != 3 || got[0] != "class" || got[1] != "id" || got[2] != "onclick" {
		t.Errorf("Props.Keys() = %v, want [class id onclick]", got)
	}
	if node.Props.Get("class") != "list big" {
		t.Errorf("class = %v", node.Props.Get("class"))
	}
	if len(node.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(node.Children))
	}
	if node.Children[0].Children[0].Text != "A" {
		t.Error("string arg should become a text child")
	}
	if node.Children[2].Kind != KindText {
		t.Errorf("last child kind = %v, want Text", node.Children[2].Kind)
	}
}

func TestContentSetsTextChildren(t *testing.T) {
	node := P(Content("hello"), Span())
	if !node.TextChildren || node.Text != "hello" {
		t.Errorf("TextChildren = %v, Text = %q", node.TextChildren, node.Text)
	}
	if node.Children != nil {
		t.Error("Content should drop child nodes")
	}
	if node.HasChildren() {
		t.Error("HasChildren() = true for text content")
	}
}

func TestPropsSetReplacesInPlace(t *testing.T) {
	var p Props
	p.Set("a", 1)
	p.Set("b", 2)
	p.Set("a", 3)

	if len(p) != 2 {
		t.Fatalf("len = %d, want 2", len(p))
	}
	if p[0].Key != "a" || p[0].Value != 3 {
		t.Errorf("p[0] = %+v, want a=3", p[0])
	}
	if v, ok := p.Lookup("missing"); ok || v != nil {
		t.Error("Lookup(missing) should miss")
	}
	if m := p.Map(); m["b"] != 2 {
		t.Errorf("Map()[b] = %v", m["b"])
	}
}

func TestPropsOfSorted(t *testing.T) {
	p := PropsOf(map[string]any{"z": 1, "a": 2, "m": 3})
	keys := p.Keys()
	if keys[0] != "a" || keys[1] != "m" || keys[2] != "z" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestEventProp(t *testing.T) {
	tests := map[string]string{
		"change":    "onChange",
		"itemAdded": "onItemAdded",
		"":          "on",
	}
	for in, want := range tests {
		if got := EventProp(in); got != want {
			t.Errorf("EventProp(%q) = %q, want %q", in, got, want)
		}
	}
	if On("select", nil).Event != "onSelect" {
		t.Error("On() should use EventProp naming")
	}
	if !IsEventProp("onclick") || IsEventProp("on") || IsEventProp("class") {
		t.Error("IsEventProp() misclassifies names")
	}
}

func TestComp(t *testing.T) {
	def := &testComp{name: "Counter"}
	child := Span("x")
	node := Comp(def, Key(7), Prop("start", 3), On("change", func(int) {}), child)

	if node.Kind != KindComponent || node.Comp != def {
		t.Fatalf("node = %v", node)
	}
	if node.Key != "7" {
		t.Errorf("Key = %q, want 7", node.Key)
	}
	if node.Props.Get("start") != 3 || !node.Props.Has("onChange") {
		t.Errorf("Props = %v", node.Props)
	}
	slot := node.Slots[DefaultSlot]
	if slot == nil || slot() != child {
		t.Error("single child should become the default slot")
	}

	multi := Comp(def, Span(), Span())
	if got := multi.Slots[DefaultSlot](); got.Kind != KindFragment || len(got.Children) != 2 {
		t.Errorf("multi-child default slot = %v", got)
	}

	named := Comp(def, Slots{"header": func() *VNode { return Text("h") }})
	if named.Slots["header"]().Text != "h" {
		t.Error("named slots should pass through")
	}
}

func TestCompKindHint(t *testing.T) {
	node := Comp(&asyncComp{testComp{name: "Lazy"}})
	if node.Kind != KindAsync {
		t.Errorf("Kind = %v, want Async", node.Kind)
	}
}

func TestSameType(t *testing.T) {
	a, b := &testComp{"A"}, &testComp{"A"}
	tests := []struct {
		name string
		x, y *VNode
		want bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"different key", Li(Key(1)), Li(Key(2)), false},
		{"text", Text("a"), Text("b"), true},
		{"kind", Text("a"), Div(), false},
		{"same component", Comp(a), Comp(a), true},
		{"equal but distinct definitions", Comp(a), Comp(b), false},
		{"nil", nil, Div(), false},
	}
	for _, tt := range tests {
		if got := SameType(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: SameType() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFragmentAndHelpers(t *testing.T) {
	frag := Fragment(Key("f"), "a", nil, []*VNode{Text("b"), nil}, If(false, Div()), When(true, func() *VNode { return Div() }))
	if frag.Key != "f" {
		t.Errorf("Key = %q", frag.Key)
	}
	if len(frag.Children) != 3 {
		t.Errorf("len(Children) = %d, want 3", len(frag.Children))
	}

	items := Range([]string{"x", "y", ""}, func(s string, i int) *VNode {
		if s == "" {
			return nil
		}
		return Li(Key(s), Textf("%d:%s", i, s))
	})
	if len(items) != 2 || items[1].Children[0].Text != "1:y" {
		t.Errorf("Range() = %v", items)
	}
	if IfElse(false, Div(), Span()).Tag != "span" {
		t.Error("IfElse(false) should return the second node")
	}
}

func TestVNodeString(t *testing.T) {
	tests := []struct {
		node *VNode
		want string
	}{
		{nil, "<nil>"},
		{Div(), "<div>"},
		{Li(Key("a")), `<li key="a">`},
		{Text("x"), `"x"`},
		{Fragment(Div()), "Fragment(1)"},
		{Comp(&testComp{"Card"}, Key("k")), `Component(Card key="k")`},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
