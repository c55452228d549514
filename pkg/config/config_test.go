package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/fitness/core"
)

const inlineConfig = `
precision: float32
loss:
  name: huber
  param: 1.5
parsimony: 0.01
seed: 7
dataset:
  rows: [[0, 1], [1, 1], [2, 1], [3, 1]]
  targets: [1, 2, 3, 4]
  x_units: [m, s]
  y_units: m/s
population:
  - op: div
    children: [{feature: 0}, {feature: 1}]
  - value: 2
`

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(inlineConfig))
	require.NoError(t, err)

	assert.Equal(t, PrecisionFloat32, cfg.Precision)
	assert.Equal(t, LossConfig{Name: "huber", Param: 1.5}, cfg.Loss)
	assert.Equal(t, 0.01, cfg.Parsimony)
	assert.Equal(t, 50, cfg.BatchSize, "default kept")
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.True(t, cfg.Dataset.Inline())
	require.Len(t, cfg.Population, 2)
	assert.Equal(t, "(x0 / x1)", cfg.Population[0].String())
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("dataset: {x: x.npy, y: y.npy}"))
	require.NoError(t, err)
	assert.Equal(t, PrecisionFloat64, cfg.Precision)
	assert.Equal(t, "l2", cfg.Loss.Name)
	assert.Equal(t, 0.0032, cfg.Parsimony)
	assert.False(t, cfg.Batching)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"precision":      "precision: float16\ndataset: {x: a, y: b}",
		"parsimony":      "parsimony: -1\ndataset: {x: a, y: b}",
		"batch size":     "batching: true\nbatch_size: 0\ndataset: {x: a, y: b}",
		"floor":          "baseline_floor: 0\ndataset: {x: a, y: b}",
		"no dataset":     "precision: float64",
		"targets":        "dataset: {rows: [[1], [2]], targets: [1]}",
		"unknown op":     "dataset: {x: a, y: b}\npopulation: [{op: tanh, children: [{feature: 0}]}]",
		"malformed yaml": "dataset: [",
		"null member":    "dataset: {x: a, y: b}\npopulation: [{feature: 0}, null]",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(src))
			assert.Error(t, err)
		})
	}

	_, err := LoadFromBytes([]byte("dataset: {x: a, y: b}\npopulation: [null]"))
	assert.ErrorIs(t, err, ErrNullMember)
}

func TestLoader_ResolvesRelativePaths(t *testing.T) {
	t.Setenv("CONFIG", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "fitness.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: {x: data/x.npy, y: /abs/y.npy}"), 0o644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data/x.npy"), cfg.Dataset.X)
	assert.Equal(t, "/abs/y.npy", cfg.Dataset.Y)
}

func TestLoader_Path(t *testing.T) {
	t.Setenv("CONFIG", "")
	assert.Equal(t, DefaultPath, NewLoader("").Path())
	assert.Equal(t, "a.yaml", NewLoader("a.yaml").Path())

	t.Setenv("CONFIG", "env.yaml")
	assert.Equal(t, "env.yaml", NewLoader("a.yaml").Path())
}

func TestLoader_SaveLoad(t *testing.T) {
	t.Setenv("CONFIG", "")
	path := filepath.Join(t.TempDir(), "nested", "fitness.yaml")
	cfg, err := LoadFromBytes([]byte(inlineConfig))
	require.NoError(t, err)

	l := NewLoader(path)
	require.NoError(t, l.Save(cfg))
	back, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Loss, back.Loss)
	assert.Equal(t, cfg.Dataset.Rows, back.Dataset.Rows)
	require.Len(t, back.Population, 2)
	assert.Equal(t, cfg.Population[0].String(), back.Population[0].String())
}

func TestBuild(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(inlineConfig))
	require.NoError(t, err)

	ds, err := BuildDataset[float32](cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.N)
	assert.Equal(t, []string{"m", "s"}, ds.XUnits)

	opts, err := BuildOptions[float32](cfg)
	require.NoError(t, err)
	assert.Equal(t, core.LossClosedForm, opts.Loss.Kind())
	assert.IsType(t, core.HuberLoss[float32]{}, opts.Loss.Elementwise())
	assert.IsType(t, &core.SeededSampler{}, opts.Sampler)
	assert.Nil(t, opts.DimensionalConstraintPenalty)

	core.UpdateBaselineLoss(ds, opts)
	assert.True(t, ds.UseBaseline())

	good := cfg.Population[0]
	assert.False(t, opts.Dimensions.Violates(good, ds, opts))
}

func TestBuildOptions_Overrides(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
loss: {name: l1}
dimensional_constraint_penalty: 5
baseline_floor: 0.5
batching: true
batch_size: 8
dataset: {x: a, y: b}
`))
	require.NoError(t, err)

	opts, err := BuildOptions[float64](cfg)
	require.NoError(t, err)
	require.NotNil(t, opts.DimensionalConstraintPenalty)
	assert.Equal(t, 5.0, *opts.DimensionalConstraintPenalty)
	require.NotNil(t, opts.BaselineFloor)
	assert.Equal(t, 0.5, *opts.BaselineFloor)
	assert.Equal(t, 8, opts.BatchSize)
	assert.Nil(t, opts.Sampler)
}

func TestBuildOptions_UnknownLoss(t *testing.T) {
	cfg := Default()
	cfg.Loss.Name = "hinge"
	_, err := BuildOptions[float64](cfg)
	assert.Error(t, err)
}

func TestBuildDataset_BadUnits(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("dataset: {rows: [[1], [2]], targets: [1, 2], x_units: [parsec]}"))
	require.NoError(t, err)
	_, err = BuildDataset[float64](cfg)
	assert.Error(t, err)
}
