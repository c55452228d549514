package core

import (
	"fmt"
	"math"
)

// DefaultDimensionalPenalty is added to the loss of a tree that violates the
// dataset's dimensional constraints when Options does not override it.
const DefaultDimensionalPenalty = 1000

// LossKind tags which loss strategy a LossStrategy holds.
type LossKind int

const (
	LossUnset LossKind = iota
	LossClosedForm
	LossUserWhole
	LossUserBatched
)

func (k LossKind) String() string {
	switch k {
	case LossClosedForm:
		return "closed_form"
	case LossUserWhole:
		return "user_whole"
	case LossUserBatched:
		return "user_batched"
	default:
		return "unset"
	}
}

// WholeLoss scores a tree against the whole dataset.
type WholeLoss[L Float] interface {
	Loss(tree Tree, ds *Dataset[L], opts *Options[L]) L
}

// BatchedLoss scores a tree against an index selection; idx is nil for all samples.
type BatchedLoss[L Float] interface {
	LossBatch(tree Tree, ds *Dataset[L], opts *Options[L], idx []int) L
}

// WholeLossFunc adapts a function to WholeLoss.
type WholeLossFunc[L Float] func(tree Tree, ds *Dataset[L], opts *Options[L]) L

func (f WholeLossFunc[L]) Loss(tree Tree, ds *Dataset[L], opts *Options[L]) L {
	return f(tree, ds, opts)
}

// BatchedLossFunc adapts a function to BatchedLoss.
type BatchedLossFunc[L Float] func(tree Tree, ds *Dataset[L], opts *Options[L], idx []int) L

func (f BatchedLossFunc[L]) LossBatch(tree Tree, ds *Dataset[L], opts *Options[L], idx []int) L {
	return f(tree, ds, opts, idx)
}

// LossStrategy is either a closed-form elementwise loss or a user scoring
// function, resolved once when options are built.
type LossStrategy[L Float] struct {
	kind        LossKind
	elementwise ElementwiseLoss[L]
	whole       WholeLoss[L]
	batched     BatchedLoss[L]
}

// ClosedForm scores with an elementwise loss reduced over samples.
func ClosedForm[L Float](loss ElementwiseLoss[L]) LossStrategy[L] {
	return LossStrategy[L]{kind: LossClosedForm, elementwise: loss}
}

// UserLoss wraps a user scoring function. f may be a BatchedLoss, a
// WholeLoss, or a plain function of either shape. When f supports the
// subset-aware shape it is always preferred.
func UserLoss[L Float](f any) (LossStrategy[L], error) {
	switch fn := f.(type) {
	case BatchedLoss[L]:
		return LossStrategy[L]{kind: LossUserBatched, batched: fn}, nil
	case func(Tree, *Dataset[L], *Options[L], []int) L:
		return LossStrategy[L]{kind: LossUserBatched, batched: BatchedLossFunc[L](fn)}, nil
	case WholeLoss[L]:
		return LossStrategy[L]{kind: LossUserWhole, whole: fn}, nil
	case func(Tree, *Dataset[L], *Options[L]) L:
		return LossStrategy[L]{kind: LossUserWhole, whole: WholeLossFunc[L](fn)}, nil
	default:
		return LossStrategy[L]{}, fmt.Errorf("unsupported loss function type %T", f)
	}
}

func (s LossStrategy[L]) Kind() LossKind { return s.kind }

// Elementwise returns the closed-form loss, or nil for user strategies.
func (s LossStrategy[L]) Elementwise() ElementwiseLoss[L] { return s.elementwise }

// EvalLoss computes the raw loss of tree on ds restricted to idx (nil for all
// samples). A tree that fails to evaluate scores +Inf. regularization adds
// the dimensional penalty to whichever loss was computed.
func EvalLoss[L Float](tree Tree, ds *Dataset[L], opts *Options[L], regularization bool, idx []int) L {
	var loss L
	switch opts.Loss.kind {
	case LossUserBatched:
		loss = opts.Loss.batched.LossBatch(tree, ds, opts, idx)
	case LossUserWhole:
		loss = opts.Loss.whole.Loss(tree, ds, opts)
	case LossClosedForm:
		loss = evalClosedForm(tree, ds, opts, idx)
		if math.IsInf(float64(loss), 1) {
			return loss
		}
	default:
		panic("core: options have no loss strategy")
	}

	if regularization {
		loss += DimensionalRegularization(tree, ds, opts)
	}
	return loss
}

func evalClosedForm[L Float](tree Tree, ds *Dataset[L], opts *Options[L], idx []int) L {
	x, y, w := ds.subset(idx)
	prediction, complete := opts.Evaluator.Evaluate(tree, x, opts)
	if !complete {
		return L(math.Inf(1))
	}

	var loss L
	if w != nil {
		loss = WeightedLoss(prediction, y, w, opts.Loss.elementwise)
	} else {
		loss = Loss(prediction, y, opts.Loss.elementwise)
	}
	if math.IsNaN(float64(loss)) {
		return L(math.Inf(1))
	}
	return loss
}

// EvalLossBatched evaluates on idx, or on opts.BatchSize freshly sampled
// indices when idx is nil.
func EvalLossBatched[L Float](tree Tree, ds *Dataset[L], opts *Options[L], regularization bool, idx []int) L {
	if idx == nil {
		idx = BatchSample(ds, opts)
	}
	return EvalLoss(tree, ds, opts, regularization, idx)
}

// DimensionalRegularization is zero unless the configured checker reports a
// violation, in which case it is the configured penalty or
// DefaultDimensionalPenalty.
func DimensionalRegularization[L Float](tree Tree, ds *Dataset[L], opts *Options[L]) L {
	if opts.Dimensions == nil || !opts.Dimensions.Violates(tree, ds, opts) {
		return 0
	}
	if opts.DimensionalConstraintPenalty != nil {
		return *opts.DimensionalConstraintPenalty
	}
	return L(DefaultDimensionalPenalty)
}
