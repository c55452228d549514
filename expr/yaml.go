package expr

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlNode is the on-disk form of a tree:
//
//	{op: add, children: [{feature: 0}, {value: 1.5}]}
type yamlNode struct {
	Op       string     `yaml:"op,omitempty"`
	Feature  *int       `yaml:"feature,omitempty"`
	Value    *float64   `yaml:"value,omitempty"`
	Children []yamlNode `yaml:"children,omitempty"`
}

// UnmarshalYAML decodes a tree and resolves its operators.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw yamlNode
	if err := value.Decode(&raw); err != nil {
		return err
	}
	built, err := raw.build()
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*n = *built
	return nil
}

// MarshalYAML encodes the tree in the form UnmarshalYAML reads.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.toYAML(), nil
}

func (n *Node) toYAML() yamlNode {
	switch n.Kind {
	case KindConstant:
		v := n.Value
		return yamlNode{Value: &v}
	case KindFeature:
		f := n.Feature
		return yamlNode{Feature: &f}
	case KindUnary:
		return yamlNode{Op: n.Op.Name, Children: []yamlNode{n.Left.toYAML()}}
	default:
		return yamlNode{Op: n.Op.Name, Children: []yamlNode{n.Left.toYAML(), n.Right.toYAML()}}
	}
}

func (r yamlNode) build() (*Node, error) {
	switch {
	case r.Op != "":
		children := make([]*Node, len(r.Children))
		for i, c := range r.Children {
			child, err := c.build()
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		switch len(children) {
		case 1:
			return Unary(r.Op, children[0])
		case 2:
			return Binary(r.Op, children[0], children[1])
		default:
			return nil, fmt.Errorf("operator %q has %d children", r.Op, len(children))
		}
	case r.Feature != nil:
		if *r.Feature < 0 {
			return nil, fmt.Errorf("negative feature index %d", *r.Feature)
		}
		return Feature(*r.Feature), nil
	case r.Value != nil:
		return Const(*r.Value), nil
	default:
		return nil, fmt.Errorf("node needs one of op, feature or value")
	}
}

// Parse decodes a YAML tree.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
