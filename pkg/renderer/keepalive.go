package renderer

import (
	"regexp"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// KeepAliveOption configures a KeepAlive boundary.
type KeepAliveOption func(*vdom.VNode)

// Include caches only components whose name matches re.
func Include(re *regexp.Regexp) KeepAliveOption {
	return func(v *vdom.VNode) { v.Props.Set("include", re) }
}

// Exclude never caches components whose name matches re.
func Exclude(re *regexp.Regexp) KeepAliveOption {
	return func(v *vdom.VNode) { v.Props.Set("exclude", re) }
}

// KeepAlive wraps child so that switching it out deactivates the
// component instead of destroying it. Switching back reuses the cached
// instance with its state. Only component children are cached.
func KeepAlive(child *vdom.VNode, opts ...KeepAliveOption) *vdom.VNode {
	v := vdom.Comp(keepAliveComponent, vdom.Slots{
		vdom.DefaultSlot: func() *vdom.VNode { return child },
	})
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// keepAliveContext is installed on the KeepAlive instance. It moves the
// host nodes of cached children in and out of an offscreen element.
type keepAliveContext struct {
	r       *Renderer
	owner   *Instance
	storage host.Handle
	cache   map[vdom.Component]*vdom.VNode
}

func (k *keepAliveContext) deactivate(v *vdom.VNode) {
	k.r.move(v, k.storage, nil)
}

func (k *keepAliveContext) activate(v *vdom.VNode, container, anchor host.Handle) {
	inst := k.r.instances[v.Instance]
	prev := inst.vnode
	k.r.move(v, container, anchor)
	k.r.updateProps(inst, prev, v)
}

// destroyCache destroys every cached instance.
func (k *keepAliveContext) destroyCache() {
	for comp, v := range k.cache {
		delete(k.cache, comp)
		if inst := k.r.instances[v.Instance]; inst != nil {
			k.r.destroy(inst, true)
		}
	}
}

type keepAliveType struct {
	def *Definition
}

func (k *keepAliveType) ComponentName() string { return k.def.Name }
func (k *keepAliveType) VNodeKind() vdom.VKind { return vdom.KindKeepAlive }
func (k *keepAliveType) definition() *Definition { return k.def }

var keepAliveComponent = &keepAliveType{def: &Definition{
	Name:  "KeepAlive",
	Props: []string{"include", "exclude"},
	Setup: setupKeepAlive,
}}

func setupKeepAlive(props *reactive.Store, sc *SetupContext) SetupResult {
	inst := sc.Instance()
	r := inst.r
	ka := &keepAliveContext{
		r:       r,
		owner:   inst,
		storage: r.adapter.CreateElement("div"),
		cache:   make(map[vdom.Component]*vdom.VNode),
	}
	inst.keepAlive = ka
	sc.OnUnmounted(ka.destroyCache)

	return SetupResult{Render: func(c *RenderContext) *vdom.VNode {
		raw := c.Slot(vdom.DefaultSlot)
		if raw == nil || !raw.Kind.IsComponent() || raw.Comp == nil {
			return raw
		}

		name := raw.Comp.ComponentName()
		include, _ := props.Get("include").(*regexp.Regexp)
		exclude, _ := props.Get("exclude").(*regexp.Regexp)
		if name != "" && ((include != nil && !include.MatchString(name)) ||
			(exclude != nil && exclude.MatchString(name))) {
			return raw
		}

		if cached, ok := ka.cache[raw.Comp]; ok && r.instances[cached.Instance] != nil {
			raw.Instance = cached.Instance
			raw.KeptAlive = true
		}
		ka.cache[raw.Comp] = raw
		raw.ShouldKeepAlive = true
		raw.KeepAliveOwner = inst.id
		return raw
	}}
}
