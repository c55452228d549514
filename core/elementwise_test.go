package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoss_MeanSquaredError(t *testing.T) {
	pred := []float64{1, 2, 3}
	target := []float64{1, 3, 5}
	assert.InDelta(t, (0.0+1+4)/3, Loss(pred, target, L2DistLoss[float64]{}), 1e-12)
}

func TestLoss_CallableMatchesClosedForm(t *testing.T) {
	pred := []float64{0.5, -1, 2, 7}
	target := []float64{1, 1, 1, 1}
	sq := ElementwiseFunc[float64](func(p, t float64) float64 { return (p - t) * (p - t) })
	assert.InDelta(t, Loss(pred, target, L2DistLoss[float64]{}), Loss(pred, target, sq), 1e-12)
}

func TestWeightedLoss_UniformWeightsMatchUnweighted(t *testing.T) {
	pred := []float64{0.1, 2.5, -3, 4, 10}
	target := []float64{0, 2, -1, 4.5, 8}
	losses := []ElementwiseLoss[float64]{
		L2DistLoss[float64]{},
		L1DistLoss[float64]{},
		HuberLoss[float64]{Delta: 1},
		ElementwiseFunc[float64](func(p, t float64) float64 { return math.Abs(p-t) * 3 }),
	}
	for _, c := range []float64{0.25, 1, 7} {
		w := []float64{c, c, c, c, c}
		for _, l := range losses {
			assert.InDelta(t, Loss(pred, target, l), WeightedLoss(pred, target, w, l), 1e-9)
		}
	}
}

func TestWeightedLoss_Weighting(t *testing.T) {
	pred := []float32{0, 0}
	target := []float32{1, 3}
	w := []float32{3, 1}
	// (3*1 + 1*9) / 4
	assert.InDelta(t, 3.0, float64(WeightedLoss(pred, target, w, L2DistLoss[float32]{})), 1e-6)
}

func TestWeightedLoss_WeightAwareCallable(t *testing.T) {
	f := WeightedElementwiseFunc[float64](func(p, t, w float64) float64 { return w * (p - t) * (p - t) })
	pred := []float64{0, 0}
	target := []float64{1, 3}

	assert.InDelta(t, 3.0, WeightedLoss(pred, target, []float64{3, 1}, f), 1e-12)
	assert.InDelta(t, Loss(pred, target, f), WeightedLoss(pred, target, []float64{2, 2}, f), 1e-12)
}

func TestLoss_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { Loss([]float64{1}, []float64{1, 2}, L2DistLoss[float64]{}) })
	assert.Panics(t, func() {
		WeightedLoss([]float64{1, 2}, []float64{1, 2}, []float64{1}, L2DistLoss[float64]{})
	})
}

func TestBuiltinLosses(t *testing.T) {
	tests := []struct {
		name string
		loss ElementwiseLoss[float64]
		p, t float64
		want float64
	}{
		{"l2", L2DistLoss[float64]{}, 3, 1, 4},
		{"l1", L1DistLoss[float64]{}, -2, 1, 3},
		{"lp", LPDistLoss[float64]{P: 3}, 3, 1, 8},
		{"huber inside", HuberLoss[float64]{Delta: 2}, 1, 0, 0.5},
		{"huber outside", HuberLoss[float64]{Delta: 1}, 3, 0, 2.5},
		{"logit zero", LogitDistLoss[float64]{}, 2, 2, 0},
		{"epsilon inside", L1EpsilonInsLoss[float64]{Epsilon: 0.5}, 1.2, 1, 0},
		{"epsilon outside", L1EpsilonInsLoss[float64]{Epsilon: 0.5}, 2, 1, 0.5},
		{"quantile under", QuantileLoss[float64]{Tau: 0.9}, 0, 1, 0.9},
		{"quantile over", QuantileLoss[float64]{Tau: 0.9}, 1, 0, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.loss.Value(tt.p, tt.t), 1e-12)
		})
	}
}

func TestLogitDistLoss_LargeResidualIsFinite(t *testing.T) {
	v := LogitDistLoss[float64]{}.Value(1000, 0)
	assert.False(t, math.IsInf(v, 0))
	assert.InDelta(t, 1000-math.Log(4), v, 1e-9)
}

func TestLossByName(t *testing.T) {
	l, err := LossByName[float64]("huber", 1.5)
	require.NoError(t, err)
	assert.Equal(t, HuberLoss[float64]{Delta: 1.5}, l)

	l, err = LossByName[float64]("", 0)
	require.NoError(t, err)
	assert.Equal(t, L2DistLoss[float64]{}, l)

	_, err = LossByName[float64]("quantile", 1.5)
	assert.Error(t, err)
	_, err = LossByName[float64]("cross_entropy", 0)
	assert.Error(t, err)
}
