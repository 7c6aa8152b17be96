package renderer

import (
	"sync"

	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// RenderFunc produces a component's subtree. Returning nil renders an
// empty text placeholder.
type RenderFunc func(c *RenderContext) *vdom.VNode

// SetupResult is what a Setup function hands back to the instance.
type SetupResult struct {
	// Bindings are exposed to the render context after state and props.
	// A binding holding a reactive.Ref is read and written through.
	Bindings map[string]any

	// Render, if set, replaces Definition.Render.
	Render RenderFunc
}

// Definition describes a stateful component. The pointer is the
// component's identity: two VNodes are the same component type only if
// they carry the same *Definition.
type Definition struct {
	Name string

	// Props lists the declared prop names. Props passed to the component
	// that are neither declared nor listeners ("on*") become attrs.
	Props []string

	// Data returns the initial state, wrapped in a deep reactive store.
	Data func() map[string]any

	// Setup runs once per instance, after props are resolved and before
	// the first render. props is read-only.
	Setup func(props *reactive.Store, ctx *SetupContext) SetupResult

	Render RenderFunc

	BeforeCreate  func()
	Created       func(c *RenderContext)
	BeforeMount   func(c *RenderContext)
	Mounted       func(c *RenderContext)
	BeforeUpdate  func(c *RenderContext)
	Updated       func(c *RenderContext)
	BeforeUnmount func(c *RenderContext)
	Unmounted     func(c *RenderContext)
}

// ComponentName implements vdom.Component.
func (d *Definition) ComponentName() string {
	return d.Name
}

func (d *Definition) definition() *Definition {
	return d
}

// declares reports whether name is a declared prop.
func (d *Definition) declares(name string) bool {
	for _, p := range d.Props {
		if p == name {
			return true
		}
	}
	return false
}

// Functional is a stateless component: a render function with declared
// props and no state, setup or hooks.
type Functional struct {
	Name   string
	Props  []string
	Render RenderFunc

	once sync.Once
	def  *Definition
}

// ComponentName implements vdom.Component.
func (f *Functional) ComponentName() string {
	return f.Name
}

func (f *Functional) definition() *Definition {
	f.once.Do(func() {
		f.def = &Definition{
			Name:   f.Name,
			Props:  f.Props,
			Render: f.Render,
		}
	})
	return f.def
}

// definer is implemented by every component type the renderer can mount.
type definer interface {
	definition() *Definition
}

// resolveProps splits the props passed to a component into declared
// props (including listeners) and attrs.
func resolveProps(def *Definition, passed vdom.Props) (props, attrs map[string]any) {
	props = make(map[string]any, len(passed))
	attrs = make(map[string]any)
	for _, p := range passed {
		if def.declares(p.Key) || vdom.IsEventProp(p.Key) {
			props[p.Key] = p.Value
		} else {
			attrs[p.Key] = p.Value
		}
	}
	return props, attrs
}

// hasPropsChanged reports whether a parent passed different props.
func hasPropsChanged(prev, next vdom.Props) bool {
	if len(prev) != len(next) {
		return true
	}
	for _, p := range next {
		old, ok := prev.Lookup(p.Key)
		if !ok || !reactive.SameValue(old, p.Value) {
			return true
		}
	}
	return false
}
