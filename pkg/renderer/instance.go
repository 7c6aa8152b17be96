package renderer

import (
	"fmt"
	"time"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// InstanceState is the lifecycle state of a component instance.
type InstanceState uint8

const (
	StateUninitialized InstanceState = iota
	StateCreated
	StateMounted
	StateUpdating
	StateUnmounted
)

// String returns the state name.
func (s InstanceState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreated:
		return "created"
	case StateMounted:
		return "mounted"
	case StateUpdating:
		return "updating"
	case StateUnmounted:
		return "unmounted"
	default:
		return fmt.Sprintf("InstanceState(%d)", uint8(s))
	}
}

// Instance is one mount of a component.
type Instance struct {
	id    vdom.InstanceID
	r     *Renderer
	def   *Definition
	vnode *vdom.VNode
	state InstanceState

	data     *reactive.Store
	props    *reactive.Store
	attrs    map[string]any
	slots    vdom.Slots
	bindings map[string]any
	render   RenderFunc
	ctx      *RenderContext

	subTree *vdom.VNode
	effect  *reactive.Effect

	mountedHooks   []func()
	unmountedHooks []func()

	keepAlive *keepAliveContext

	// container and anchor are where the subtree was last placed. They
	// locate the subtree when the adapter cannot.
	container host.Handle
	anchor    host.Handle
}

// ID returns the instance's arena ID.
func (i *Instance) ID() vdom.InstanceID { return i.id }

// Name returns the component name.
func (i *Instance) Name() string { return i.def.Name }

// State returns the lifecycle state.
func (i *Instance) State() InstanceState { return i.state }

// Subtree returns the VNode tree produced by the last render.
func (i *Instance) Subtree() *vdom.VNode { return i.subTree }

// Props returns a read-only view of the resolved props.
func (i *Instance) Props() *reactive.Store { return reactive.ReadonlyView(i.props) }

// Data returns the reactive state, or nil if the definition has no Data.
func (i *Instance) Data() *reactive.Store { return i.data }

// Attrs returns the passed props that were not declared.
func (i *Instance) Attrs() map[string]any { return i.attrs }

// Renders returns how many times the render effect has run.
func (i *Instance) Renders() uint64 {
	if i.effect == nil {
		return 0
	}
	return i.effect.Runs()
}

// Update queues a re-render.
func (i *Instance) Update() {
	if i.effect != nil && i.effect.Active() {
		i.r.queue.Enqueue(i.effect.ID(), i.effect.Run)
	}
}

func (r *Renderer) mountComponent(v *vdom.VNode, container, anchor host.Handle) {
	if v.KeptAlive {
		if owner := r.instances[v.KeepAliveOwner]; owner != nil && owner.keepAlive != nil {
			if inst := r.instances[v.Instance]; inst != nil {
				owner.keepAlive.activate(v, container, anchor)
				return
			}
		}
		// The cached instance is gone; mount from scratch.
		v.KeptAlive = false
	}

	d, ok := v.Comp.(definer)
	if !ok || v.Comp == nil {
		r.report(r.diagnose("R005", "").With("component", fmt.Sprintf("%T", v.Comp)))
		return
	}
	def := d.definition()

	if def.BeforeCreate != nil && !r.guard(def.Name, "beforeCreate", def.BeforeCreate) {
		return
	}

	r.nextInstance++
	inst := &Instance{
		id:        r.nextInstance,
		r:         r,
		def:       def,
		vnode:     v,
		slots:     v.Slots,
		container: container,
		anchor:    anchor,
	}
	if inst.slots == nil {
		inst.slots = vdom.Slots{}
	}
	props, attrs := resolveProps(def, v.Props)
	inst.props = reactive.ShallowReactive(props)
	inst.attrs = attrs
	inst.ctx = &RenderContext{inst: inst}

	r.instances[inst.id] = inst
	v.Instance = inst.id
	r.metrics.InstanceMounted()

	render := def.Render
	created := r.guard(def.Name, "setup", func() {
		if def.Data != nil {
			inst.data = reactive.Reactive(def.Data())
		}
		if def.Setup != nil {
			result := def.Setup(reactive.ReadonlyView(inst.props), &SetupContext{inst: inst})
			if result.Render != nil {
				if render != nil {
					r.report(r.diagnose("R010", def.Name))
				}
				render = result.Render
			}
			inst.bindings = result.Bindings
		}
	})
	if !created {
		// Release whatever setup registered before it panicked.
		for _, fn := range inst.unmountedHooks {
			r.guard(def.Name, "unmounted", fn)
		}
		inst.state = StateUnmounted
		delete(r.instances, inst.id)
		v.Instance = 0
		r.metrics.InstanceUnmounted()
		return
	}
	if render == nil {
		render = func(*RenderContext) *vdom.VNode { return nil }
	}
	inst.render = render
	inst.state = StateCreated
	inst.hook(def.Created)

	inst.effect = reactive.NewEffect(inst.run,
		reactive.WithName(def.Name),
		reactive.WithScheduler(func(e *reactive.Effect) {
			r.queue.Enqueue(e.ID(), e.Run)
		}),
		reactive.WithErrorHandler(func(_ *reactive.Effect, recovered any, _ []byte) {
			r.report(r.diagnose("R008", def.Name).With("panic", fmt.Sprint(recovered)))
		}),
	)
}

// run is the render effect: render, then mount or patch the subtree.
func (i *Instance) run() {
	r := i.r
	start := time.Now()

	mounting := i.state == StateCreated
	if mounting {
		i.hook(i.def.BeforeMount)
	} else {
		i.hook(i.def.BeforeUpdate)
	}

	next := i.render(i.ctx)
	if next == nil {
		next = vdom.Text("")
	}

	if mounting {
		r.patch(nil, next, i.container, i.anchor)
		i.subTree = next
		i.state = StateMounted
		i.hook(i.def.Mounted)
		for _, fn := range i.mountedHooks {
			r.guard(i.def.Name, "mounted", fn)
		}
	} else {
		i.state = StateUpdating
		prev := i.subTree
		container := r.parentOf(prev, i.container)
		r.patch(prev, next, container, i.anchor)
		i.subTree = next
		i.state = StateMounted
		i.hook(i.def.Updated)
	}

	r.metrics.ObserveRender(i.def.Name, time.Since(start))
}

func (i *Instance) hook(fn func(*RenderContext)) {
	if fn == nil {
		return
	}
	i.r.guard(i.def.Name, "hook", func() { fn(i.ctx) })
}

// guard runs fn untracked and reports a panic as R012. It reports whether
// fn returned normally.
func (r *Renderer) guard(component, phase string, fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.report(r.diagnose("R012", component).
				With("phase", phase).
				With("panic", fmt.Sprint(rec)))
			ok = false
		}
	}()
	reactive.Untracked(fn)
	return true
}

// patchComponent carries the instance from n1 over to n2 and updates its
// props. Changed props trigger a re-render through the shallow-reactive
// props store; passed slots always queue one.
func (r *Renderer) patchComponent(n1, n2 *vdom.VNode) {
	inst := r.instances[n1.Instance]
	n2.Instance = n1.Instance
	if inst == nil {
		return
	}
	r.updateProps(inst, n1, n2)
}

func (r *Renderer) updateProps(inst *Instance, n1, n2 *vdom.VNode) {
	inst.vnode = n2

	if n1 == nil || hasPropsChanged(n1.Props, n2.Props) {
		next, attrs := resolveProps(inst.def, n2.Props)
		for k, v := range next {
			inst.props.Set(k, v)
		}
		for k := range inst.props.Raw() {
			if _, ok := next[k]; !ok {
				inst.props.Delete(k)
			}
		}
		inst.attrs = attrs
	}

	inst.slots = n2.Slots
	if inst.slots == nil {
		inst.slots = vdom.Slots{}
	}
	if len(n2.Slots) > 0 {
		inst.Update()
	}
}

// destroy runs the unmount lifecycle and removes inst from the arena.
func (r *Renderer) destroy(inst *Instance, doRemove bool) {
	if inst.state == StateUnmounted {
		return
	}
	inst.hook(inst.def.BeforeUnmount)
	if inst.effect != nil {
		inst.effect.Stop()
	}
	r.unmount(inst.subTree, doRemove)
	inst.state = StateUnmounted
	inst.hook(inst.def.Unmounted)
	for _, fn := range inst.unmountedHooks {
		r.guard(inst.def.Name, "unmounted", fn)
	}

	delete(r.instances, inst.id)
	r.metrics.InstanceUnmounted()
}
