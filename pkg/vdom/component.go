package vdom

// Comp creates a component VNode for c. Arguments can be: nil, Attr,
// []Attr, Props, EventHandler, Slots, *VNode, []*VNode, string. Child nodes
// become the default slot.
func Comp(c Component, args ...any) *VNode {
	node := &VNode{
		Kind: KindComponent,
		Comp: c,
	}
	if h, ok := c.(KindHinter); ok {
		node.Kind = h.VNodeKind()
	}

	var children []*VNode
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			addAttr(node, v)
		case []Attr:
			for _, a := range v {
				addAttr(node, a)
			}
		case Props:
			for _, a := range v {
				addAttr(node, a)
			}
		case EventHandler:
			node.Props.Set(v.Event, v.Handler)
		case Slots:
			if node.Slots == nil {
				node.Slots = make(Slots, len(v))
			}
			for name, fn := range v {
				node.Slots[name] = fn
			}
		case *VNode:
			if v != nil {
				children = append(children, v)
			}
		case []*VNode:
			for _, child := range v {
				if child != nil {
					children = append(children, child)
				}
			}
		case string:
			children = append(children, Text(v))
		}
	}

	if len(children) > 0 {
		if node.Slots == nil {
			node.Slots = make(Slots, 1)
		}
		if _, ok := node.Slots[DefaultSlot]; !ok {
			content := children
			if len(content) == 1 {
				single := content[0]
				node.Slots[DefaultSlot] = func() *VNode { return single }
			} else {
				node.Slots[DefaultSlot] = func() *VNode { return Fragment(content) }
			}
		}
	}
	return node
}
