package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset_AvgY(t *testing.T) {
	ds, err := NewDataset([][]float64{{0, 1, 2, 3}}, []float64{1, 2, 3, 4}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, ds.N)
	assert.Equal(t, 1, ds.NFeatures)
	assert.InDelta(t, 2.5, ds.AvgY, 1e-12)
	assert.False(t, ds.Weighted())
	assert.False(t, ds.UseBaseline())
	assert.Equal(t, 1.0, ds.BaselineLoss())
}

func TestNewDataset_WeightedAvgY(t *testing.T) {
	ds, err := NewDataset([][]float32{{0, 1}}, []float32{1, 3}, []float32{3, 1})
	require.NoError(t, err)

	assert.True(t, ds.Weighted())
	assert.InDelta(t, 1.5, float64(ds.AvgY), 1e-6)
}

func TestNewDataset_ShapeErrors(t *testing.T) {
	_, err := NewDataset([][]float64{{0, 1, 2}}, []float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewDataset([][]float64{{0, 1}}, []float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewDataset([][]float64{{0, 1}}, []float64{1, 2}, nil, WithUnits[float64]([]string{"m", "s"}, ""))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewDataset([][]float64{}, []float64{}, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = NewDataset([][]float64{}, []float64{1}, nil)
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestDataset_Subset(t *testing.T) {
	ds, err := NewDataset([][]float64{{10, 11, 12}, {20, 21, 22}}, []float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)

	x, y, w := ds.subset([]int{2, 0, 2})
	assert.Equal(t, [][]float64{{12, 10, 12}, {22, 20, 22}}, x)
	assert.Equal(t, []float64{3, 1, 3}, y)
	assert.Equal(t, []float64{6, 4, 6}, w)

	x, y, w = ds.subset(nil)
	assert.Equal(t, ds.X, x)
	assert.Equal(t, ds.Y, y)
	assert.Equal(t, ds.Weights, w)
}

func TestOptions_Validate(t *testing.T) {
	opts := &Options[float64]{}
	assert.ErrorIs(t, opts.Validate(false), ErrNoLoss)

	opts.Loss = ClosedForm[float64](L2DistLoss[float64]{})
	assert.ErrorIs(t, opts.Validate(false), ErrNoEvaluator)

	opts.Evaluator = EvaluatorFunc[float64](func(Tree, [][]float64, *Options[float64]) ([]float64, bool) { return nil, false })
	assert.NoError(t, opts.Validate(false))
	assert.ErrorIs(t, opts.Validate(true), ErrBatchSize)

	opts.BatchSize = 8
	opts.Parsimony = -1
	assert.ErrorIs(t, opts.Validate(true), ErrParsimony)

	opts.Parsimony = 0.5
	assert.ErrorIs(t, opts.Validate(true), ErrNoComplexity)

	opts.Complexity = unitComplexity{}
	assert.NoError(t, opts.Validate(true))
}

type unitComplexity struct{}

func (unitComplexity) Complexity(HasTree) int { return 1 }
