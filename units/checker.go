package units

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/expr"
)

// DefaultCacheSize bounds the number of parsed unit strings kept in memory.
const DefaultCacheSize = 256

// Checker implements core.DimensionalChecker for expr trees using the units
// attached to the dataset. Datasets without units never violate. An empty
// target unit means only internal consistency is checked.
type Checker[L core.Float] struct {
	parsed *lru.Cache[string, Dims]
}

// NewChecker creates a checker whose parse cache holds cacheSize entries.
func NewChecker[L core.Float](cacheSize int) (*Checker[L], error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Dims](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit cache: %w", err)
	}
	return &Checker[L]{parsed: cache}, nil
}

func (c *Checker[L]) parse(s string) (Dims, error) {
	if d, ok := c.parsed.Get(s); ok {
		return d, nil
	}
	d, err := Parse(s)
	if err != nil {
		return Dims{}, err
	}
	c.parsed.Add(s, d)
	return d, nil
}

// Validate reports unit strings on ds that cannot be parsed.
func (c *Checker[L]) Validate(ds *core.Dataset[L]) error {
	for i, u := range ds.XUnits {
		if _, err := c.parse(u); err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
	}
	if _, err := c.parse(ds.YUnits); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

// Violates reports whether tree is dimensionally inconsistent with ds.
// Unparsable units and trees of unknown type count as violations.
func (c *Checker[L]) Violates(tree core.Tree, ds *core.Dataset[L], _ *core.Options[L]) bool {
	if !ds.HasUnits() {
		return false
	}
	var node *expr.Node
	switch t := tree.(type) {
	case *expr.Node:
		node = t
	case core.ConstantTree[L]:
		return false
	default:
		return true
	}

	q, ok := c.infer(node, ds)
	if !ok {
		return true
	}
	if ds.YUnits == "" || q.wildcard {
		return false
	}
	want, err := c.parse(ds.YUnits)
	if err != nil {
		return true
	}
	return !q.dims.Equal(want)
}

// quantity is the inferred dimension of a subtree. A wildcard subtree is built
// only from constants and may take any dimension.
type quantity struct {
	dims     Dims
	wildcard bool
}

func (c *Checker[L]) infer(n *expr.Node, ds *core.Dataset[L]) (quantity, bool) {
	switch n.Kind {
	case expr.KindConstant:
		return quantity{wildcard: true}, true

	case expr.KindFeature:
		if n.Feature >= len(ds.XUnits) {
			return quantity{}, n.Feature < ds.NFeatures
		}
		d, err := c.parse(ds.XUnits[n.Feature])
		if err != nil {
			return quantity{}, false
		}
		return quantity{dims: d}, true

	case expr.KindUnary:
		a, ok := c.infer(n.Left, ds)
		if !ok {
			return quantity{}, false
		}
		switch n.Op.Name {
		case "neg", "abs":
			return a, true
		case "square":
			return quantity{dims: a.dims.Scale(2), wildcard: a.wildcard}, true
		case "sqrt":
			return quantity{dims: a.dims.Scale(0.5), wildcard: a.wildcard}, true
		default:
			if !a.wildcard && !a.dims.IsDimensionless() {
				return quantity{}, false
			}
			return quantity{}, true
		}

	case expr.KindBinary:
		l, ok := c.infer(n.Left, ds)
		if !ok {
			return quantity{}, false
		}
		r, ok := c.infer(n.Right, ds)
		if !ok {
			return quantity{}, false
		}
		switch n.Op.Name {
		case "add", "sub":
			switch {
			case l.wildcard && r.wildcard:
				return quantity{wildcard: true}, true
			case l.wildcard:
				return r, true
			case r.wildcard:
				return l, true
			}
			return l, l.dims.Equal(r.dims)
		case "mul":
			return quantity{dims: l.dims.Add(r.dims), wildcard: l.wildcard || r.wildcard}, true
		case "div":
			return quantity{dims: l.dims.Sub(r.dims), wildcard: l.wildcard || r.wildcard}, true
		case "pow":
			if !r.wildcard && !r.dims.IsDimensionless() {
				return quantity{}, false
			}
			if l.wildcard || l.dims.IsDimensionless() {
				return l, true
			}
			if n.Right.Kind == expr.KindConstant {
				return quantity{dims: l.dims.Scale(n.Right.Value)}, true
			}
			return quantity{}, false
		}
	}
	return quantity{}, false
}
