package core

import "math"

// ConstantTree predicts Value for every sample. It is the baseline model.
type ConstantTree[L Float] struct {
	Value L
}

func (c ConstantTree[L]) GetTree() Tree { return c }

// ConstantEvaluator wraps an evaluator so ConstantTree evaluates without it.
// Other trees are passed through.
type ConstantEvaluator[L Float] struct {
	Next Evaluator[L]
}

func (e ConstantEvaluator[L]) Evaluate(tree Tree, x [][]L, opts *Options[L]) ([]L, bool) {
	if c, ok := tree.(ConstantTree[L]); ok {
		return constantPrediction(c.Value, x), true
	}
	return e.Next.Evaluate(tree, x, opts)
}

func constantPrediction[L Float](v L, x [][]L) []L {
	n := 0
	if len(x) > 0 {
		n = len(x[0])
	}
	out := make([]L, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// BaselineTree builds the constant predictor for ds. Evaluators that do not
// know ConstantTree should be wrapped in ConstantEvaluator.
type BaselineTree[L Float] func(ds *Dataset[L]) Tree

// UpdateBaselineLoss recomputes the normalization baseline of ds from the
// constant mean predictor, evaluated without regularization. A non-finite
// baseline disables normalization. It is the only writer of the baseline
// fields and must not run concurrently with scoring on ds.
func UpdateBaselineLoss[L Float](ds *Dataset[L], opts *Options[L]) {
	UpdateBaselineLossWith(ds, opts, func(ds *Dataset[L]) Tree { return ConstantTree[L]{Value: ds.AvgY} })
}

// UpdateBaselineLossWith is UpdateBaselineLoss with a caller-built constant tree.
func UpdateBaselineLossWith[L Float](ds *Dataset[L], opts *Options[L], build BaselineTree[L]) {
	tree := build(ds)

	baselineOpts := *opts
	if _, ok := tree.(ConstantTree[L]); ok && opts.Evaluator != nil {
		baselineOpts.Evaluator = ConstantEvaluator[L]{Next: opts.Evaluator}
	}
	loss := EvalLoss(tree, ds, &baselineOpts, false, nil)

	if math.IsInf(float64(loss), 0) || math.IsNaN(float64(loss)) {
		ds.baselineLoss = 1
		ds.useBaseline = false
		return
	}
	ds.baselineLoss = loss
	ds.useBaseline = true
}
