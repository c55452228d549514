package core

// BaselineFloor is the smallest baseline used for normalization. Baselines
// below it, or unset ones, normalize by the floor instead.
const BaselineFloor = 0.01

// ComputeComplexity asks LossToScore to compute the member's complexity.
const ComputeComplexity = -1

// LossToScore normalizes loss by the baseline and adds the parsimony penalty
// complexity * opts.Parsimony. Pass ComputeComplexity to have it computed
// with opts.Complexity.
func LossToScore[L Float](loss L, useBaseline bool, baseline L, member HasTree, opts *Options[L], complexity int) L {
	normalization := opts.baselineFloor()
	if useBaseline && baseline >= normalization {
		normalization = baseline
	}
	score := loss / normalization

	if complexity < 0 {
		complexity = 0
		if opts.Complexity != nil {
			complexity = opts.Complexity.Complexity(member)
		}
	}
	return score + L(complexity)*opts.Parsimony
}

// ScoreFunc returns the search score of member on the full dataset together
// with its raw loss.
func ScoreFunc[L Float](ds *Dataset[L], member HasTree, opts *Options[L], complexity int) (score, loss L) {
	loss = EvalLoss(member.GetTree(), ds, opts, true, nil)
	score = LossToScore(loss, ds.useBaseline, ds.baselineLoss, member, opts, complexity)
	return score, loss
}

// ScoreFuncBatched is ScoreFunc on idx, or on a fresh batch when idx is nil.
func ScoreFuncBatched[L Float](ds *Dataset[L], member HasTree, opts *Options[L], complexity int, idx []int) (score, loss L) {
	loss = EvalLossBatched(member.GetTree(), ds, opts, true, idx)
	score = LossToScore(loss, ds.useBaseline, ds.baselineLoss, member, opts, complexity)
	return score, loss
}
