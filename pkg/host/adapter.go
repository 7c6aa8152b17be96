package host

// Handle is an opaque reference to a host node. The reconciler only stores
// handles and passes them back to the adapter that created them. Handles
// must be comparable.
type Handle any

// Adapter is the set of primitive mutations the reconciler issues.
type Adapter interface {
	// CreateElement creates a detached element.
	CreateElement(tag string) Handle

	// CreateText creates a detached text node.
	CreateText(text string) Handle

	// SetText replaces the content of a text node.
	SetText(h Handle, text string)

	// SetElementText replaces all children of an element with text.
	SetElementText(h Handle, text string)

	// Insert places h into parent before anchor, or at the end when anchor
	// is nil. Inserting an attached handle moves it.
	Insert(h, parent, anchor Handle)

	// Remove detaches h from its parent. Detached handles are ignored.
	Remove(h Handle)

	// PatchProp updates one property from prev to next. A nil next removes
	// the property.
	PatchProp(h Handle, name string, prev, next any)
}

// Navigator is implemented by adapters that can answer structural queries.
// The reconciler uses it to locate the real position of nodes that were
// moved after they were mounted.
type Navigator interface {
	ParentNode(h Handle) Handle
	NextSibling(h Handle) Handle
}

// IsEventProp reports whether a prop name denotes an event listener.
func IsEventProp(name string) bool {
	return len(name) > 2 && name[0] == 'o' && name[1] == 'n'
}
