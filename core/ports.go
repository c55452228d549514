package core

// Tree is an expression program evaluable against a dataset. A bare tree is
// its own HasTree.
type Tree interface {
	HasTree
}

// HasTree is anything that carries an expression tree: bare trees and
// population members alike.
type HasTree interface {
	GetTree() Tree
}

// Evaluator runs a tree over a features x samples matrix. complete is false
// when evaluation was not numerically valid (domain error, overflow).
type Evaluator[L Float] interface {
	Evaluate(tree Tree, x [][]L, opts *Options[L]) (prediction []L, complete bool)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc[L Float] func(tree Tree, x [][]L, opts *Options[L]) ([]L, bool)

func (f EvaluatorFunc[L]) Evaluate(tree Tree, x [][]L, opts *Options[L]) ([]L, bool) {
	return f(tree, x, opts)
}

// ComplexityFunc counts the size of a candidate, >= 0.
type ComplexityFunc interface {
	Complexity(member HasTree) int
}

// DimensionalChecker reports whether a tree breaks the dataset's unit rules.
type DimensionalChecker[L Float] interface {
	Violates(tree Tree, ds *Dataset[L], opts *Options[L]) bool
}

// BatchSampler draws size indices from [0, n).
type BatchSampler interface {
	Sample(n, size int) []int
}
