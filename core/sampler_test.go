package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/testkit"
)

func TestUniformSampler_Range(t *testing.T) {
	idx := core.UniformSampler{}.Sample(3, 500)
	assert.Len(t, idx, 500)
	seen := map[int]bool{}
	for _, i := range idx {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 3)
		seen[i] = true
	}
	assert.Len(t, seen, 3)
}

func TestSeededSampler_Reproducible(t *testing.T) {
	a := core.NewSeededSampler(42)
	b := core.NewSeededSampler(42)
	for range 5 {
		assert.Equal(t, a.Sample(100, 20), b.Sample(100, 20))
	}
	assert.NotEqual(t, core.NewSeededSampler(1).Sample(1000, 20), core.NewSeededSampler(2).Sample(1000, 20))
}

func TestBatchSample(t *testing.T) {
	ds := testkit.LinearDataset[float64]()
	opts := testkit.Options[float64](&testkit.Evaluator[float64]{})
	opts.BatchSize = 10

	idx := core.BatchSample(ds, opts)
	assert.Len(t, idx, 10)
	for _, i := range idx {
		assert.Less(t, i, ds.N)
	}

	opts.Sampler = testkit.SequentialSampler{}
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}, core.BatchSample(ds, opts))
}
