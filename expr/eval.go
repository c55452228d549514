package expr

import (
	"math"

	"github.com/snow-ghost/fitness/core"
)

// Evaluator evaluates *Node trees column-wise. Any non-finite intermediate
// value stops evaluation and reports an incomplete result.
type Evaluator[L core.Float] struct{}

func (Evaluator[L]) Evaluate(tree core.Tree, x [][]L, _ *core.Options[L]) ([]L, bool) {
	n := 0
	if len(x) > 0 {
		n = len(x[0])
	}
	switch t := tree.(type) {
	case *Node:
		return eval(t, x, n)
	case core.ConstantTree[L]:
		return eval(Const(float64(t.Value)), x, n)
	default:
		return nil, false
	}
}

func eval[L core.Float](node *Node, x [][]L, n int) ([]L, bool) {
	if node == nil {
		return nil, false
	}
	switch node.Kind {
	case KindConstant:
		v := L(node.Value)
		if !finite(float64(v)) {
			return nil, false
		}
		out := make([]L, n)
		for i := range out {
			out[i] = v
		}
		return out, true

	case KindFeature:
		if node.Feature < 0 || node.Feature >= len(x) {
			return nil, false
		}
		out := make([]L, n)
		copy(out, x[node.Feature])
		return out, true

	case KindUnary:
		out, ok := eval(node.Left, x, n)
		if !ok {
			return nil, false
		}
		for i, a := range out {
			v := node.Op.Apply1(float64(a))
			if !finite(v) {
				return nil, false
			}
			out[i] = L(v)
		}
		return out, !badArray(out)

	case KindBinary:
		left, ok := eval(node.Left, x, n)
		if !ok {
			return nil, false
		}
		right, ok := eval(node.Right, x, n)
		if !ok {
			return nil, false
		}
		for i := range left {
			v := node.Op.Apply2(float64(left[i]), float64(right[i]))
			if !finite(v) {
				return nil, false
			}
			left[i] = L(v)
		}
		return left, !badArray(left)
	}
	return nil, false
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// badArray catches values that overflow only after narrowing to L.
func badArray[L core.Float](v []L) bool {
	for _, x := range v {
		if !finite(float64(x)) {
			return true
		}
	}
	return false
}
