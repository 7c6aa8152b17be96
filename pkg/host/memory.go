package host

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NodeType distinguishes element and text nodes in a Memory tree.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	default:
		return fmt.Sprintf("NodeType(%d)", t)
	}
}

// invoker holds the current listener for one event. Updating a listener
// swaps the value without re-binding.
type invoker struct {
	value any
}

// Node is a node in a Memory tree. Nodes are Handles.
type Node struct {
	Type     NodeType
	Tag      string
	Text     string
	Class    string
	Attrs    map[string]string
	Children []*Node
	Parent   *Node

	listeners map[string]*invoker
	id        int
}

// ID returns the creation sequence number of the node.
func (n *Node) ID() int { return n.id }

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// HasListener reports whether an event listener is attached.
func (n *Node) HasListener(event string) bool {
	_, ok := n.listeners[strings.ToLower(event)]
	return ok
}

// Dispatch calls the listener for event with args. It reports whether a
// listener was found.
func (n *Node) Dispatch(event string, args ...any) bool {
	inv, ok := n.listeners[strings.ToLower(event)]
	if !ok || inv.value == nil {
		return false
	}
	switch fn := inv.value.(type) {
	case func():
		fn()
	case func(any):
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		fn(arg)
	case func(...any):
		fn(args...)
	case func(string):
		var s string
		if len(args) > 0 {
			s = fmt.Sprint(args[0])
		}
		fn(s)
	default:
		return false
	}
	return true
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Index returns the position of n among its siblings, or -1.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// HTML serializes the subtree. Attributes are sorted by name after class.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.Children {
		c.writeHTML(&b)
	}
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n.Type == TextNode {
		b.WriteString(escapeHTML(n.Text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	if n.Class != "" {
		b.WriteString(` class="`)
		b.WriteString(escapeAttr(n.Class))
		b.WriteByte('"')
	}
	names := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		b.WriteByte(' ')
		b.WriteString(k)
		if v := n.Attrs[k]; v != "" {
			b.WriteString(`="`)
			b.WriteString(escapeAttr(v))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')
	if voidElements[n.Tag] {
		return
	}
	for _, c := range n.Children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func (n *Node) detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if i := n.Index(); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// Memory is an in-memory host tree. It is not safe for concurrent use.
type Memory struct {
	nextID int
}

// NewMemory creates an empty in-memory host.
func NewMemory() *Memory {
	return &Memory{}
}

// NewContainer creates a detached element to render into.
func (m *Memory) NewContainer(tag string) *Node {
	return m.CreateElement(tag).(*Node)
}

func (m *Memory) newNode(t NodeType) *Node {
	m.nextID++
	return &Node{Type: t, id: m.nextID}
}

// CreateElement implements Adapter.
func (m *Memory) CreateElement(tag string) Handle {
	n := m.newNode(ElementNode)
	n.Tag = tag
	n.Attrs = make(map[string]string)
	return n
}

// CreateText implements Adapter.
func (m *Memory) CreateText(text string) Handle {
	n := m.newNode(TextNode)
	n.Text = text
	return n
}

// SetText implements Adapter.
func (m *Memory) SetText(h Handle, text string) {
	node(h).Text = text
}

// SetElementText implements Adapter.
func (m *Memory) SetElementText(h Handle, text string) {
	el := node(h)
	for _, c := range el.Children {
		c.Parent = nil
	}
	el.Children = nil
	if text != "" {
		t := m.CreateText(text).(*Node)
		t.Parent = el
		el.Children = append(el.Children, t)
	}
}

// Insert implements Adapter. It panics if anchor is not a child of
// parent.
func (m *Memory) Insert(h, parent, anchor Handle) {
	n, p := node(h), node(parent)
	a, _ := anchor.(*Node)
	if a != nil && a == n && n.Parent == p {
		return
	}
	if a != nil && a.Parent != p {
		panic(fmt.Sprintf("host: insert anchor %s is not a child of %s", describe(a), describe(p)))
	}
	n.detach()
	n.Parent = p

	if a != nil {
		i := a.Index()
		p.Children = append(p.Children, nil)
		copy(p.Children[i+1:], p.Children[i:])
		p.Children[i] = n
		return
	}
	p.Children = append(p.Children, n)
}

// Remove implements Adapter.
func (m *Memory) Remove(h Handle) {
	node(h).detach()
}

// PatchProp implements Adapter. Names starting with "on" are listeners,
// "class" sets the class name, nil and false remove an attribute, true
// sets a boolean attribute.
func (m *Memory) PatchProp(h Handle, name string, prev, next any) {
	el := node(h)
	switch {
	case IsEventProp(name):
		event := strings.ToLower(name[2:])
		if next == nil {
			delete(el.listeners, event)
			return
		}
		if el.listeners == nil {
			el.listeners = make(map[string]*invoker)
		}
		if inv, ok := el.listeners[event]; ok {
			inv.value = next
			return
		}
		el.listeners[event] = &invoker{value: next}
	case name == "class":
		if next == nil {
			el.Class = ""
			return
		}
		el.Class = propToString(next)
	default:
		switch v := next.(type) {
		case nil:
			delete(el.Attrs, name)
		case bool:
			if v {
				el.Attrs[name] = ""
			} else {
				delete(el.Attrs, name)
			}
		default:
			el.Attrs[name] = propToString(v)
		}
	}
}

// ParentNode implements Navigator.
func (m *Memory) ParentNode(h Handle) Handle {
	if p := node(h).Parent; p != nil {
		return p
	}
	return nil
}

// NextSibling implements Navigator.
func (m *Memory) NextSibling(h Handle) Handle {
	n := node(h)
	i := n.Index()
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

func node(h Handle) *Node {
	n, ok := h.(*Node)
	if !ok || n == nil {
		panic(fmt.Sprintf("host: handle %T is not a *host.Node", h))
	}
	return n
}

func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PropString renders a prop value the way Memory stores it.
func PropString(v any) string {
	return propToString(v)
}
