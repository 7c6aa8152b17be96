// Package fixture loads VNode trees from YAML scripts.
//
// A script is a stream of YAML documents. Each document is one step: a
// tree to render after the previous one.
//
//	name: initial
//	tree:
//	  tag: ul
//	  children:
//	    - {tag: li, key: a, children: [a]}
//	    - {tag: li, key: b, children: [b]}
//	---
//	name: rotate
//	tree:
//	  tag: ul
//	  children:
//	    - {tag: li, key: b, children: [b]}
//	    - {tag: li, key: a, children: [a]}
//
// A node is either a string (a text node) or a map with the fields of
// NodeSpec. A map without a tag and with children is a fragment.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

// ErrEmptyScript is returned for a script with no steps.
var ErrEmptyScript = errors.New("fixture: script has no steps")

// NodeSpec is the map form of a node.
type NodeSpec struct {
	Tag      string         `mapstructure:"tag"`
	Key      string         `mapstructure:"key"`
	Class    string         `mapstructure:"class"`
	Text     *string        `mapstructure:"text"`
	Props    map[string]any `mapstructure:"props"`
	Children []any          `mapstructure:"children"`
}

// stepSpec is one YAML document.
type stepSpec struct {
	Name string `mapstructure:"name"`
	Tree any    `mapstructure:"tree"`
}

// Step is one tree of a script.
type Step struct {
	Name string
	Tree *vdom.VNode
}

// Script is a sequence of trees.
type Script struct {
	Path  string
	Steps []Step
}

// LoadFile reads a script from path.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse reads a script from r.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	s := &Script{}
	for i := 0; ; i++ {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if doc == nil {
			continue
		}

		var spec stepSpec
		if err := decode(doc, &spec); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("step %d", len(s.Steps)+1)
		}
		tree, err := Build(spec.Tree)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		s.Steps = append(s.Steps, Step{Name: spec.Name, Tree: tree})
	}
	if len(s.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	return s, nil
}

// Build converts a decoded YAML value into a VNode. A nil value builds a
// nil tree.
func Build(v any) (*vdom.VNode, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case string:
		return vdom.Text(n), nil
	case int, int64, float64, bool:
		return vdom.Text(fmt.Sprint(n)), nil
	case map[string]any:
		var spec NodeSpec
		if err := decode(n, &spec); err != nil {
			return nil, err
		}
		return spec.build()
	default:
		return nil, fmt.Errorf("fixture: unsupported node %T", v)
	}
}

func (s *NodeSpec) build() (*vdom.VNode, error) {
	children := make([]*vdom.VNode, 0, len(s.Children))
	for i, c := range s.Children {
		child, err := Build(c)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		if child != nil {
			children = append(children, child)
		}
	}

	if s.Tag == "" {
		if s.Text != nil || len(s.Props) > 0 || s.Class != "" {
			return nil, fmt.Errorf("fixture: node without tag can only hold children")
		}
		frag := vdom.Fragment(children)
		frag.Key = s.Key
		return frag, nil
	}

	args := make([]any, 0, len(s.Props)+3)
	if s.Key != "" {
		args = append(args, vdom.Key(s.Key))
	}
	if s.Class != "" {
		args = append(args, vdom.Class(s.Class))
	}
	names := make([]string, 0, len(s.Props))
	for name := range s.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, vdom.Prop(name, s.Props[name]))
	}
	if s.Text != nil {
		if len(children) > 0 {
			return nil, fmt.Errorf("fixture: <%s> has both text and children", s.Tag)
		}
		args = append(args, vdom.Content(*s.Text))
	} else {
		args = append(args, children)
	}
	return vdom.H(s.Tag, args...), nil
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
