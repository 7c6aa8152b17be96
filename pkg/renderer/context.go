package renderer

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/reconcile/pkg/reactive"
	"github.com/vango-dev/reconcile/pkg/scheduler"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// RenderContext is what render functions and lifecycle hooks see of their
// instance. Get resolves a name against state, then props, then setup
// bindings.
type RenderContext struct {
	inst *Instance
}

// Get returns the value of key. Reads are tracked.
func (c *RenderContext) Get(key string) any {
	i := c.inst
	if i.data != nil && i.data.Has(key) {
		return i.data.Get(key)
	}
	if v, ok := i.props.Lookup(key); ok {
		return v
	}
	if v, ok := i.bindings[key]; ok {
		if ref, isRef := v.(reactive.Ref); isRef {
			return ref.RefValue()
		}
		return v
	}
	i.r.report(i.r.diagnose("R004", i.def.Name).With("key", key))
	return nil
}

// Set writes key into state or a setup binding. Writing a prop is
// reported and ignored.
func (c *RenderContext) Set(key string, value any) {
	i := c.inst
	if i.data != nil && i.data.Has(key) {
		i.data.Set(key, value)
		return
	}
	if i.props.Has(key) {
		i.r.report(i.r.diagnose("R003", i.def.Name).With("key", key))
		return
	}
	if v, ok := i.bindings[key]; ok {
		if ref, isRef := v.(reactive.Ref); isRef {
			if err := ref.SetRefValue(value); err != nil {
				i.r.report(i.r.diagnose("R004", i.def.Name).With("key", key).Wrap(err))
			}
			return
		}
		i.bindings[key] = value
		return
	}
	i.r.report(i.r.diagnose("R004", i.def.Name).With("key", key))
}

// String returns Get(key) formatted as a string.
func (c *RenderContext) String(key string) string {
	switch v := c.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns Get(key) as an int, or 0.
func (c *RenderContext) Int(key string) int {
	switch v := c.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Bool returns Get(key) as a bool.
func (c *RenderContext) Bool(key string) bool {
	b, _ := c.Get(key).(bool)
	return b
}

// Props returns the read-only props store.
func (c *RenderContext) Props() *reactive.Store {
	return reactive.ReadonlyView(c.inst.props)
}

// State returns the reactive state, or nil.
func (c *RenderContext) State() *reactive.Store {
	return c.inst.data
}

// Attrs returns the undeclared props.
func (c *RenderContext) Attrs() map[string]any {
	return c.inst.attrs
}

// Slot renders the named slot, or returns nil if it was not passed.
func (c *RenderContext) Slot(name string) *vdom.VNode {
	if fn := c.inst.slots[name]; fn != nil {
		return fn()
	}
	return nil
}

// Emit calls the parent's listener for event.
func (c *RenderContext) Emit(event string, args ...any) {
	c.inst.emit(event, args...)
}

// Instance returns the instance being rendered.
func (c *RenderContext) Instance() *Instance {
	return c.inst
}

// SetupContext is passed to Definition.Setup. The instance is explicit;
// there is no ambient "current instance".
type SetupContext struct {
	inst *Instance
}

// Attrs returns the undeclared props.
func (s *SetupContext) Attrs() map[string]any {
	return s.inst.attrs
}

// Slots returns the passed slots.
func (s *SetupContext) Slots() vdom.Slots {
	return s.inst.slots
}

// Emit calls the parent's listener for event.
func (s *SetupContext) Emit(event string, args ...any) {
	s.inst.emit(event, args...)
}

// OnMounted registers fn to run after the first render is mounted.
func (s *SetupContext) OnMounted(fn func()) {
	s.inst.mountedHooks = append(s.inst.mountedHooks, fn)
}

// OnUnmounted registers fn to run after the instance is destroyed.
func (s *SetupContext) OnUnmounted(fn func()) {
	s.inst.unmountedHooks = append(s.inst.unmountedHooks, fn)
}

// Instance returns the instance being set up.
func (s *SetupContext) Instance() *Instance {
	return s.inst
}

// Scheduler returns the host the instance's renderer runs on.
func (s *SetupContext) Scheduler() scheduler.Host {
	return s.inst.r.host
}

func (i *Instance) emit(event string, args ...any) {
	name := vdom.EventProp(event)
	handler := i.props.Peek(name)
	if handler == nil || !callHandler(handler, args) {
		i.r.report(i.r.diagnose("R002", i.def.Name).With("event", event))
	}
}

// callHandler invokes a listener of one of the supported shapes. It
// reports false when h is not callable with args.
func callHandler(h any, args []any) bool {
	switch fn := h.(type) {
	case func():
		fn()
	case func(...any):
		fn(args...)
	case func(any):
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		fn(arg)
	case func(string):
		var s string
		if len(args) > 0 {
			s = fmt.Sprint(args[0])
		}
		fn(s)
	case func(int):
		var n int
		if len(args) > 0 {
			n, _ = args[0].(int)
		}
		fn(n)
	default:
		return false
	}
	return true
}
