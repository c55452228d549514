package core

import (
	"fmt"
	"math"
)

// ElementwiseLoss is a closed-form loss of a single (prediction, target) pair.
type ElementwiseLoss[L Float] interface {
	Value(prediction, target L) L
}

// weightedElementwise is implemented by losses that take the sample weight
// themselves instead of having it multiplied in.
type weightedElementwise[L Float] interface {
	WeightedValue(prediction, target, weight L) L
}

// ElementwiseFunc adapts an arbitrary per-pair callable.
type ElementwiseFunc[L Float] func(prediction, target L) L

func (f ElementwiseFunc[L]) Value(prediction, target L) L { return f(prediction, target) }

// WeightedElementwiseFunc adapts a per-pair callable that also receives the
// sample weight. Unweighted reductions call it with weight 1.
type WeightedElementwiseFunc[L Float] func(prediction, target, weight L) L

func (f WeightedElementwiseFunc[L]) Value(prediction, target L) L { return f(prediction, target, 1) }

func (f WeightedElementwiseFunc[L]) WeightedValue(prediction, target, weight L) L {
	return f(prediction, target, weight)
}

// Loss returns the mean of loss over all pairs.
func Loss[L Float](prediction, target []L, loss ElementwiseLoss[L]) L {
	if len(prediction) != len(target) {
		panic(fmt.Sprintf("core: prediction has %d samples, target has %d", len(prediction), len(target)))
	}
	var sum L
	for i := range prediction {
		sum += loss.Value(prediction[i], target[i])
	}
	return sum / L(len(prediction))
}

// WeightedLoss returns sum(w_i * loss_i) / sum(w_i). Losses implementing
// WeightedValue fold the weight in themselves.
func WeightedLoss[L Float](prediction, target, weights []L, loss ElementwiseLoss[L]) L {
	if len(prediction) != len(target) || len(prediction) != len(weights) {
		panic(fmt.Sprintf("core: prediction has %d samples, target %d, weights %d",
			len(prediction), len(target), len(weights)))
	}
	var sum, wsum L
	if wl, ok := loss.(weightedElementwise[L]); ok {
		for i := range prediction {
			sum += wl.WeightedValue(prediction[i], target[i], weights[i])
			wsum += weights[i]
		}
	} else {
		for i := range prediction {
			sum += weights[i] * loss.Value(prediction[i], target[i])
			wsum += weights[i]
		}
	}
	return sum / wsum
}

// L2DistLoss is the squared error.
type L2DistLoss[L Float] struct{}

func (L2DistLoss[L]) Value(prediction, target L) L {
	d := prediction - target
	return d * d
}

// L1DistLoss is the absolute error.
type L1DistLoss[L Float] struct{}

func (L1DistLoss[L]) Value(prediction, target L) L {
	return L(math.Abs(float64(prediction - target)))
}

// LPDistLoss is |prediction - target|^P.
type LPDistLoss[L Float] struct{ P L }

func (l LPDistLoss[L]) Value(prediction, target L) L {
	return L(math.Pow(math.Abs(float64(prediction-target)), float64(l.P)))
}

// HuberLoss is quadratic within Delta of the target and linear outside.
type HuberLoss[L Float] struct{ Delta L }

func (l HuberLoss[L]) Value(prediction, target L) L {
	a := L(math.Abs(float64(prediction - target)))
	if a <= l.Delta {
		return a * a / 2
	}
	return l.Delta * (a - l.Delta/2)
}

// LogitDistLoss is -log(4 e^r / (1 + e^r)^2) with r = prediction - target.
type LogitDistLoss[L Float] struct{}

func (LogitDistLoss[L]) Value(prediction, target L) L {
	r := float64(prediction - target)
	return L(2*softplus(r) - r - math.Log(4))
}

func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}

// L1EpsilonInsLoss ignores errors smaller than Epsilon.
type L1EpsilonInsLoss[L Float] struct{ Epsilon L }

func (l L1EpsilonInsLoss[L]) Value(prediction, target L) L {
	a := L(math.Abs(float64(prediction - target)))
	if a <= l.Epsilon {
		return 0
	}
	return a - l.Epsilon
}

// QuantileLoss is the pinball loss for quantile Tau in (0, 1).
type QuantileLoss[L Float] struct{ Tau L }

func (l QuantileLoss[L]) Value(prediction, target L) L {
	r := target - prediction
	if r >= 0 {
		return l.Tau * r
	}
	return (l.Tau - 1) * r
}

// LossByName resolves a built-in loss from its configuration name. param is
// the loss parameter (P, Delta, Epsilon, Tau) and is ignored by l1, l2 and logit.
func LossByName[L Float](name string, param float64) (ElementwiseLoss[L], error) {
	switch name {
	case "", "l2", "mse":
		return L2DistLoss[L]{}, nil
	case "l1", "mae":
		return L1DistLoss[L]{}, nil
	case "lp":
		if param <= 0 {
			return nil, fmt.Errorf("lp loss needs a positive exponent, got %g", param)
		}
		return LPDistLoss[L]{P: L(param)}, nil
	case "huber":
		if param <= 0 {
			return nil, fmt.Errorf("huber loss needs a positive delta, got %g", param)
		}
		return HuberLoss[L]{Delta: L(param)}, nil
	case "logit":
		return LogitDistLoss[L]{}, nil
	case "epsilon_insensitive":
		if param < 0 {
			return nil, fmt.Errorf("epsilon-insensitive loss needs a non-negative epsilon, got %g", param)
		}
		return L1EpsilonInsLoss[L]{Epsilon: L(param)}, nil
	case "quantile":
		if param <= 0 || param >= 1 {
			return nil, fmt.Errorf("quantile loss needs tau in (0, 1), got %g", param)
		}
		return QuantileLoss[L]{Tau: L(param)}, nil
	default:
		return nil, fmt.Errorf("unknown elementwise loss %q", name)
	}
}
