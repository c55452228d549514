package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snow-ghost/fitness/core"
)

// Kind is the node type of an expression tree.
type Kind int

const (
	KindConstant Kind = iota
	KindFeature
	KindUnary
	KindBinary
)

// Node is an expression tree node. Trees are immutable once built and may be
// shared between goroutines.
type Node struct {
	Kind    Kind
	Value   float64
	Feature int
	Op      *Operator
	Left    *Node
	Right   *Node
}

// GetTree returns n itself.
func (n *Node) GetTree() core.Tree { return n }

// Const is a constant leaf.
func Const(v float64) *Node { return &Node{Kind: KindConstant, Value: v} }

// Feature reads column i of the feature matrix.
func Feature(i int) *Node { return &Node{Kind: KindFeature, Feature: i} }

// Unary applies the named unary operator.
func Unary(op string, child *Node) (*Node, error) {
	o, err := lookup(op, 1)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindUnary, Op: o, Left: child}, nil
}

// Binary applies the named binary operator.
func Binary(op string, left, right *Node) (*Node, error) {
	o, err := lookup(op, 2)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindBinary, Op: o, Left: left, Right: right}, nil
}

// MustUnary is Unary that panics on an unknown operator.
func MustUnary(op string, child *Node) *Node {
	n, err := Unary(op, child)
	if err != nil {
		panic(err)
	}
	return n
}

// MustBinary is Binary that panics on an unknown operator.
func MustBinary(op string, left, right *Node) *Node {
	n, err := Binary(op, left, right)
	if err != nil {
		panic(err)
	}
	return n
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindUnary:
		return 1 + n.Left.Count()
	case KindBinary:
		return 1 + n.Left.Count() + n.Right.Count()
	default:
		return 1
	}
}

// Walk visits the tree in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	if n.Left != nil {
		n.Left.Walk(fn)
	}
	if n.Right != nil {
		n.Right.Walk(fn)
	}
}

func (n *Node) String() string { return n.Render(nil) }

// Render prints the tree in infix form, naming features from names when given.
func (n *Node) Render(names []string) string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	n.render(&b, names)
	return b.String()
}

func (n *Node) render(b *strings.Builder, names []string) {
	switch n.Kind {
	case KindConstant:
		b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case KindFeature:
		if n.Feature < len(names) {
			b.WriteString(names[n.Feature])
		} else {
			fmt.Fprintf(b, "x%d", n.Feature)
		}
	case KindUnary:
		b.WriteString(n.Op.Name)
		b.WriteByte('(')
		n.Left.render(b, names)
		b.WriteByte(')')
	case KindBinary:
		if n.Op.Infix == "" {
			b.WriteString(n.Op.Name)
			b.WriteByte('(')
			n.Left.render(b, names)
			b.WriteString(", ")
			n.Right.render(b, names)
			b.WriteByte(')')
			return
		}
		b.WriteByte('(')
		n.Left.render(b, names)
		b.WriteString(" " + n.Op.Infix + " ")
		n.Right.render(b, names)
		b.WriteByte(')')
	}
}

// Complexity counts nodes. Trees that are not *Node, such as the baseline
// constant, count as a single leaf.
type Complexity struct{}

func (Complexity) Complexity(member core.HasTree) int {
	if n, ok := member.GetTree().(*Node); ok {
		return n.Count()
	}
	return 1
}
