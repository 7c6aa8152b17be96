package vdom

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Attr represents a single attribute or prop.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event listener prop.
type EventHandler struct {
	Event   string // full prop name: "onclick", "onChange"
	Handler any
}

// Props is an ordered list of name/value pairs. Order is preserved so that
// mount issues PatchProp calls deterministically.
type Props []Attr

// PropsOf builds Props from a map, sorted by name.
func PropsOf(m map[string]any) Props {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := make(Props, 0, len(keys))
	for _, k := range keys {
		p = append(p, Attr{Key: k, Value: m[k]})
	}
	return p
}

// Lookup returns the value for key and whether it is present.
func (p Props) Lookup(key string) (any, bool) {
	for _, a := range p {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Get returns the value for key, or nil.
func (p Props) Get(key string) any {
	v, _ := p.Lookup(key)
	return v
}

// Has reports whether key is present.
func (p Props) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Set replaces the value for key in place, or appends it.
func (p *Props) Set(key string, value any) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Attr{Key: key, Value: value})
}

// Keys returns the prop names in order.
func (p Props) Keys() []string {
	keys := make([]string, len(p))
	for i, a := range p {
		keys[i] = a.Key
	}
	return keys
}

// Map returns the props as a map.
func (p Props) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, a := range p {
		m[a.Key] = a.Value
	}
	return m
}

// EventProp returns the prop name a component listener for event uses:
// "change" becomes "onChange".
func EventProp(event string) string {
	if event == "" {
		return "on"
	}
	r, size := utf8.DecodeRuneInString(event)
	return "on" + string(unicode.ToUpper(r)) + event[size:]
}

// IsEventProp reports whether name is a listener prop.
func IsEventProp(name string) bool {
	return strings.HasPrefix(name, "on") && len(name) > 2
}
