package core

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Float is the numeric precision used for data, losses and scores.
type Float interface {
	~float32 | ~float64
}

var (
	ErrShapeMismatch = errors.New("dataset shape mismatch")
	ErrEmptyDataset  = errors.New("dataset has no samples")
	ErrNoFeatures    = errors.New("dataset has no features")
)

// Dataset holds the immutable samples a candidate is scored against, plus the
// normalization baseline maintained by UpdateBaselineLoss.
type Dataset[L Float] struct {
	X       [][]L // features x samples
	Y       []L
	Weights []L // nil or len N

	N         int
	NFeatures int
	AvgY      L

	VariableNames []string
	XUnits        []string
	YUnits        string

	baselineLoss L
	useBaseline  bool
}

// DatasetOption configures optional dataset metadata.
type DatasetOption[L Float] func(*Dataset[L])

// WithUnits attaches physical units to the features and the target.
func WithUnits[L Float](xUnits []string, yUnits string) DatasetOption[L] {
	return func(d *Dataset[L]) {
		d.XUnits = xUnits
		d.YUnits = yUnits
	}
}

// WithVariableNames names the features for rendering.
func WithVariableNames[L Float](names []string) DatasetOption[L] {
	return func(d *Dataset[L]) { d.VariableNames = names }
}

// NewDataset validates shapes and precomputes the (weighted) mean target.
func NewDataset[L Float](x [][]L, y []L, weights []L, opts ...DatasetOption[L]) (*Dataset[L], error) {
	n := len(y)
	if n == 0 {
		return nil, ErrEmptyDataset
	}
	if len(x) == 0 {
		return nil, ErrNoFeatures
	}
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("feature %d has %d samples, target has %d: %w", i, len(row), n, ErrShapeMismatch)
		}
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("weights have %d entries, target has %d: %w", len(weights), n, ErrShapeMismatch)
	}

	d := &Dataset[L]{
		X:            x,
		Y:            y,
		Weights:      weights,
		N:            n,
		NFeatures:    len(x),
		baselineLoss: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.XUnits != nil && len(d.XUnits) != d.NFeatures {
		return nil, fmt.Errorf("%d feature units for %d features: %w", len(d.XUnits), d.NFeatures, ErrShapeMismatch)
	}
	if d.VariableNames != nil && len(d.VariableNames) != d.NFeatures {
		return nil, fmt.Errorf("%d variable names for %d features: %w", len(d.VariableNames), d.NFeatures, ErrShapeMismatch)
	}

	var w []float64
	if weights != nil {
		w = toFloat64(weights)
	}
	d.AvgY = L(stat.Mean(toFloat64(y), w))
	return d, nil
}

// Weighted reports whether the dataset carries sample weights.
func (d *Dataset[L]) Weighted() bool { return d.Weights != nil }

// HasUnits reports whether any feature or the target carries units.
func (d *Dataset[L]) HasUnits() bool {
	if d.YUnits != "" {
		return true
	}
	for _, u := range d.XUnits {
		if u != "" {
			return true
		}
	}
	return false
}

// BaselineLoss is meaningful only when UseBaseline is true.
func (d *Dataset[L]) BaselineLoss() L { return d.baselineLoss }

func (d *Dataset[L]) UseBaseline() bool { return d.useBaseline }

// subset returns the feature matrix, targets and weights restricted to idx.
// A nil idx returns the dataset's own slices without copying.
func (d *Dataset[L]) subset(idx []int) (x [][]L, y []L, w []L) {
	if idx == nil {
		return d.X, d.Y, d.Weights
	}
	x = make([][]L, len(d.X))
	for f, row := range d.X {
		x[f] = gather(row, idx)
	}
	y = gather(d.Y, idx)
	if d.Weights != nil {
		w = gather(d.Weights, idx)
	}
	return x, y, w
}

func gather[L Float](v []L, idx []int) []L {
	out := make([]L, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

func toFloat64[L Float](v []L) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Options configures how candidates are scored. Build it once per search and
// share it read-only between workers.
type Options[L Float] struct {
	Loss      LossStrategy[L]
	BatchSize int
	Parsimony L

	// DimensionalConstraintPenalty overrides DefaultDimensionalPenalty when set.
	DimensionalConstraintPenalty *L
	// BaselineFloor overrides the BaselineFloor constant when set.
	BaselineFloor *L

	Evaluator  Evaluator[L]
	Complexity ComplexityFunc
	Dimensions DimensionalChecker[L]
	Sampler    BatchSampler
}

var (
	ErrNoLoss       = errors.New("options: no loss strategy configured")
	ErrNoEvaluator  = errors.New("options: no tree evaluator configured")
	ErrBatchSize    = errors.New("options: batch size must be positive")
	ErrParsimony    = errors.New("options: parsimony must be non-negative")
	ErrNoComplexity = errors.New("options: parsimony requires a complexity function")
)

// Validate reports configuration inconsistencies. batching requires a positive
// batch size.
func (o *Options[L]) Validate(batching bool) error {
	if o.Loss.Kind() == LossUnset {
		return ErrNoLoss
	}
	if o.Loss.Kind() == LossClosedForm && o.Evaluator == nil {
		return ErrNoEvaluator
	}
	if batching && o.BatchSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrBatchSize, o.BatchSize)
	}
	if o.Parsimony < 0 {
		return ErrParsimony
	}
	if o.Parsimony != 0 && o.Complexity == nil {
		return ErrNoComplexity
	}
	return nil
}

func (o *Options[L]) sampler() BatchSampler {
	if o.Sampler != nil {
		return o.Sampler
	}
	return UniformSampler{}
}

func (o *Options[L]) baselineFloor() L {
	if o.BaselineFloor != nil {
		return *o.BaselineFloor
	}
	return L(BaselineFloor)
}
