package vdom

import (
	"fmt"

	"github.com/vango-dev/reconcile/pkg/host"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Stateful or functional component
	KindAsync                  // Async component wrapper
	KindKeepAlive              // Keep-alive cache boundary
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindAsync:
		return "Async"
	case KindKeepAlive:
		return "KeepAlive"
	default:
		return fmt.Sprintf("VKind(%d)", uint8(k))
	}
}

// IsComponent reports whether k is one of the component kinds.
func (k VKind) IsComponent() bool {
	return k == KindComponent || k == KindAsync || k == KindKeepAlive
}

// InstanceID identifies a mounted component instance in the renderer's
// arena. Zero means "not mounted".
type InstanceID uint64

// Component is a component definition. Its identity (pointer equality) is
// what the reconciler compares to decide whether two component VNodes are
// the same type.
type Component interface {
	ComponentName() string
}

// KindHinter is implemented by definitions that need a VNode kind other
// than KindComponent.
type KindHinter interface {
	VNodeKind() VKind
}

// Slot renders slot content on demand.
type Slot func() *VNode

// Slots maps slot names to slot functions. "default" is the unnamed slot.
type Slots map[string]Slot

// DefaultSlot is the name of the unnamed slot.
const DefaultSlot = "default"

// VNode is the virtual DOM node.
type VNode struct {
	Kind  VKind  // Node type
	Tag   string // Element tag name (e.g., "div")
	Props Props  // Attributes, listeners, or component props
	Key   string // Reconciliation key; empty means unkeyed

	// Children holds child nodes for elements and fragments.
	Children []*VNode

	// Text is the content of a text node, or of an element when
	// TextChildren is set.
	Text         string
	TextChildren bool

	// Comp and Slots are set for component kinds.
	Comp  Component
	Slots Slots

	// Host is the host handle, set once an element or text node is mounted.
	// For a fragment it is the empty text node that ends its children.
	Host host.Handle

	// Instance is set once a component node is mounted.
	Instance InstanceID

	// Keep-alive markers. ShouldKeepAlive tells unmount to deactivate
	// instead of destroy; KeptAlive tells mount to activate the cached
	// instance instead of creating one.
	ShouldKeepAlive bool
	KeptAlive       bool
	KeepAliveOwner  InstanceID
}

// String returns a short description for logs.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindElement:
		if v.Key != "" {
			return fmt.Sprintf("<%s key=%q>", v.Tag, v.Key)
		}
		return "<" + v.Tag + ">"
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindFragment:
		return fmt.Sprintf("Fragment(%d)", len(v.Children))
	}
	name := "?"
	if v.Comp != nil {
		name = v.Comp.ComponentName()
	}
	if v.Key != "" {
		return fmt.Sprintf("%s(%s key=%q)", v.Kind, name, v.Key)
	}
	return fmt.Sprintf("%s(%s)", v.Kind, name)
}

// SameType reports whether a and b can be patched into each other rather
// than replaced: same kind, same key, and same tag or component identity.
func SameType(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Key != b.Key {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent, KindAsync, KindKeepAlive:
		return a.Comp == b.Comp
	}
	return true
}

// HasChildren reports whether v carries a child node list.
func (v *VNode) HasChildren() bool {
	return !v.TextChildren && len(v.Children) > 0
}
