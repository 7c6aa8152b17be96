package renderer

import (
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// patch reconciles n1 into n2 under container. A nil n1 mounts n2 before
// anchor (nil appends).
func (r *Renderer) patch(n1, n2 *vdom.VNode, container, anchor host.Handle) {
	if n1 == n2 || n2 == nil {
		return
	}

	if n1 != nil && !vdom.SameType(n1, n2) {
		if next, ok := r.nextHostAfter(n1); ok {
			anchor = next
		}
		r.unmount(n1, true)
		n1 = nil
	}

	r.metrics.ObservePatch(n2.Kind.String())

	switch n2.Kind {
	case vdom.KindElement:
		if n1 == nil {
			r.mountElement(n2, container, anchor)
		} else {
			r.patchElement(n1, n2)
		}

	case vdom.KindText:
		if n1 == nil {
			n2.Host = r.adapter.CreateText(n2.Text)
			r.adapter.Insert(n2.Host, container, anchor)
		} else {
			n2.Host = n1.Host
			if n2.Text != n1.Text {
				r.adapter.SetText(n2.Host, n2.Text)
			}
		}

	case vdom.KindFragment:
		// A fragment owns an empty text node after its children so it
		// keeps a host position while it has none.
		if n1 == nil {
			n2.Host = r.adapter.CreateText("")
			r.adapter.Insert(n2.Host, container, anchor)
			r.mountChildren(n2.Children, container, n2.Host)
		} else {
			n2.Host = n1.Host
			r.patchChildList(n1.Children, n2.Children, container, n2.Host)
		}

	case vdom.KindComponent, vdom.KindAsync, vdom.KindKeepAlive:
		if n1 == nil {
			r.mountComponent(n2, container, anchor)
		} else {
			r.patchComponent(n1, n2)
		}

	default:
		r.report(r.diagnose("R005", "").With("kind", n2.Kind.String()))
	}
}

func (r *Renderer) mountElement(v *vdom.VNode, container, anchor host.Handle) {
	el := r.adapter.CreateElement(v.Tag)
	v.Host = el

	if v.TextChildren {
		if v.Text != "" {
			r.adapter.SetElementText(el, v.Text)
		}
	} else {
		r.mountChildren(v.Children, el, nil)
	}

	for _, p := range v.Props {
		r.adapter.PatchProp(el, p.Key, nil, p.Value)
	}

	r.adapter.Insert(el, container, anchor)
}

func (r *Renderer) mountChildren(children []*vdom.VNode, container, anchor host.Handle) {
	for _, c := range children {
		r.patch(nil, c, container, anchor)
	}
}

func (r *Renderer) patchElement(n1, n2 *vdom.VNode) {
	el := n1.Host
	n2.Host = el

	for _, p := range n2.Props {
		prev, had := n1.Props.Lookup(p.Key)
		if !had || !reactive.SameValue(prev, p.Value) {
			r.adapter.PatchProp(el, p.Key, prev, p.Value)
		}
	}
	for _, p := range n1.Props {
		if !n2.Props.Has(p.Key) {
			r.adapter.PatchProp(el, p.Key, p.Value, nil)
		}
	}

	r.patchChildren(n1, n2, el)
}

// patchChildren handles the transitions between the three child shapes of
// an element: none, text, and a node list.
func (r *Renderer) patchChildren(n1, n2 *vdom.VNode, el host.Handle) {
	switch {
	case n2.TextChildren:
		if n1.HasChildren() {
			r.unmountChildren(n1.Children)
		}
		if !n1.TextChildren || n1.Text != n2.Text {
			r.adapter.SetElementText(el, n2.Text)
		}

	case len(n2.Children) > 0:
		switch {
		case n1.TextChildren:
			if n1.Text != "" {
				r.adapter.SetElementText(el, "")
			}
			r.mountChildren(n2.Children, el, nil)
		case len(n1.Children) == 0:
			r.mountChildren(n2.Children, el, nil)
		default:
			r.patchKeyedChildren(n1.Children, n2.Children, el, nil)
		}

	default:
		if n1.HasChildren() {
			r.unmountChildren(n1.Children)
		} else if n1.TextChildren && n1.Text != "" {
			r.adapter.SetElementText(el, "")
		}
	}
}

// patchChildList is patchChildren for fragments, which only ever hold a
// node list and share their container with siblings.
func (r *Renderer) patchChildList(c1, c2 []*vdom.VNode, container, anchor host.Handle) {
	switch {
	case len(c2) == 0:
		r.unmountChildren(c1)
	case len(c1) == 0:
		r.mountChildren(c2, container, anchor)
	default:
		r.patchKeyedChildren(c1, c2, container, anchor)
	}
}

func (r *Renderer) unmountChildren(children []*vdom.VNode) {
	for _, c := range children {
		r.unmount(c, true)
	}
}

// unmount releases v. With doRemove false, host nodes are left in place
// because an ancestor element is being removed anyway; components below
// are still torn down.
func (r *Renderer) unmount(v *vdom.VNode, doRemove bool) {
	if v == nil {
		return
	}
	switch v.Kind {
	case vdom.KindElement:
		if !v.TextChildren {
			for _, c := range v.Children {
				r.unmount(c, false)
			}
		}
		if doRemove && v.Host != nil {
			r.adapter.Remove(v.Host)
		}

	case vdom.KindText:
		if doRemove && v.Host != nil {
			r.adapter.Remove(v.Host)
		}

	case vdom.KindFragment:
		for _, c := range v.Children {
			r.unmount(c, doRemove)
		}
		if doRemove && v.Host != nil {
			r.adapter.Remove(v.Host)
		}

	case vdom.KindComponent, vdom.KindAsync, vdom.KindKeepAlive:
		if v.ShouldKeepAlive {
			if owner := r.instances[v.KeepAliveOwner]; owner != nil && owner.keepAlive != nil {
				owner.keepAlive.deactivate(v)
				return
			}
		}
		if inst := r.instances[v.Instance]; inst != nil {
			r.destroy(inst, doRemove)
		}
	}
}

// move relocates the host nodes of an already mounted v before anchor.
func (r *Renderer) move(v *vdom.VNode, container, anchor host.Handle) {
	switch v.Kind {
	case vdom.KindElement, vdom.KindText:
		if v.Host != nil {
			r.adapter.Insert(v.Host, container, anchor)
		}
	case vdom.KindFragment:
		for _, c := range v.Children {
			r.move(c, container, anchor)
		}
		if v.Host != nil {
			r.adapter.Insert(v.Host, container, anchor)
		}
	case vdom.KindComponent, vdom.KindAsync, vdom.KindKeepAlive:
		if inst := r.instances[v.Instance]; inst != nil {
			inst.container, inst.anchor = container, anchor
			if inst.subTree != nil {
				r.move(inst.subTree, container, anchor)
			}
		}
	}
}

// firstHost returns the first host node v renders, or nil if it renders
// none.
func (r *Renderer) firstHost(v *vdom.VNode) host.Handle {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindElement, vdom.KindText:
		return v.Host
	case vdom.KindFragment:
		for _, c := range v.Children {
			if h := r.firstHost(c); h != nil {
				return h
			}
		}
		return v.Host
	case vdom.KindComponent, vdom.KindAsync, vdom.KindKeepAlive:
		if inst := r.instances[v.Instance]; inst != nil {
			return r.firstHost(inst.subTree)
		}
	}
	return nil
}

// lastHost returns the last host node v renders, or nil.
func (r *Renderer) lastHost(v *vdom.VNode) host.Handle {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindElement, vdom.KindText:
		return v.Host
	case vdom.KindFragment:
		if v.Host != nil {
			return v.Host
		}
		for i := len(v.Children) - 1; i >= 0; i-- {
			if h := r.lastHost(v.Children[i]); h != nil {
				return h
			}
		}
	case vdom.KindComponent, vdom.KindAsync, vdom.KindKeepAlive:
		if inst := r.instances[v.Instance]; inst != nil {
			return r.lastHost(inst.subTree)
		}
	}
	return nil
}

// nextHostAfter returns the host node that currently follows v, using the
// adapter's Navigator; nil means v is last in its parent. ok is false when
// that cannot be determined.
func (r *Renderer) nextHostAfter(v *vdom.VNode) (next host.Handle, ok bool) {
	if r.nav == nil {
		return nil, false
	}
	last := r.lastHost(v)
	if last == nil {
		return nil, false
	}
	return r.nav.NextSibling(last), true
}

// parentOf returns the container v's host nodes currently live in, or
// fallback.
func (r *Renderer) parentOf(v *vdom.VNode, fallback host.Handle) host.Handle {
	if r.nav == nil {
		return fallback
	}
	if h := r.firstHost(v); h != nil {
		if p := r.nav.ParentNode(h); p != nil {
			return p
		}
	}
	return fallback
}
