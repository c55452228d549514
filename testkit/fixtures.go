// Package testkit provides datasets, evaluators and checkers for tests of
// the scoring core and its callers.
package testkit

import (
	"sync/atomic"

	"github.com/snow-ghost/fitness/core"
)

// LinearDataset has one feature x = [0 1 2 3] and target y = [1 2 3 4], so
// AvgY is 2.5 and the squared-error loss of the mean predictor is 1.25.
func LinearDataset[L core.Float]() *core.Dataset[L] {
	ds, err := core.NewDataset([][]L{{0, 1, 2, 3}}, []L{1, 2, 3, 4}, nil)
	if err != nil {
		panic(err)
	}
	return ds
}

// WeightedLinearDataset is LinearDataset with the given weights.
func WeightedLinearDataset[L core.Float](weights []L) *core.Dataset[L] {
	ds, err := core.NewDataset([][]L{{0, 1, 2, 3}}, []L{1, 2, 3, 4}, weights)
	if err != nil {
		panic(err)
	}
	return ds
}

// Prediction is a tree that predicts fixed values for the samples it is
// evaluated on. Values are looked up by the first feature, which in
// LinearDataset is the sample index.
type Prediction[L core.Float] struct {
	Values []L
	Fail   bool
}

func (p *Prediction[L]) GetTree() core.Tree { return p }

// Evaluator evaluates Prediction trees and core.ConstantTree, and counts calls.
type Evaluator[L core.Float] struct {
	calls atomic.Int64
}

func (e *Evaluator[L]) Evaluate(tree core.Tree, x [][]L, _ *core.Options[L]) ([]L, bool) {
	e.calls.Add(1)
	n := len(x[0])
	switch t := tree.(type) {
	case *Prediction[L]:
		if t.Fail {
			return nil, false
		}
		out := make([]L, n)
		for i, xi := range x[0] {
			out[i] = t.Values[int(xi)]
		}
		return out, true
	case core.ConstantTree[L]:
		out := make([]L, n)
		for i := range out {
			out[i] = t.Value
		}
		return out, true
	}
	return nil, false
}

// Calls returns the number of Evaluate calls so far.
func (e *Evaluator[L]) Calls() int64 { return e.calls.Load() }

// Checker reports a fixed dimensional verdict.
type Checker[L core.Float] struct {
	Violation bool
}

func (c Checker[L]) Violates(core.Tree, *core.Dataset[L], *core.Options[L]) bool {
	return c.Violation
}

// NodeCount counts every tree as Size nodes.
type NodeCount struct {
	Size int
}

func (c NodeCount) Complexity(core.HasTree) int { return c.Size }

// SequentialSampler returns 0..size-1 modulo n, so a batch of n enumerates
// every sample exactly once.
type SequentialSampler struct{}

func (SequentialSampler) Sample(n, size int) []int {
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i % n
	}
	return idx
}

// Options returns closed-form squared-error options wired to eval.
func Options[L core.Float](eval core.Evaluator[L]) *core.Options[L] {
	return &core.Options[L]{
		Loss:       core.ClosedForm[L](core.L2DistLoss[L]{}),
		Evaluator:  eval,
		Complexity: NodeCount{Size: 1},
		BatchSize:  4,
	}
}
