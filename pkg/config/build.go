package config

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/dataset"
	"github.com/snow-ghost/fitness/expr"
	"github.com/snow-ghost/fitness/units"
)

// BuildOptions turns the configuration into scoring options wired to the
// expr evaluator, node-count complexity and the units checker.
func BuildOptions[L core.Float](c *Config) (*core.Options[L], error) {
	loss, err := core.LossByName[L](c.Loss.Name, c.Loss.Param)
	if err != nil {
		return nil, err
	}
	checker, err := units.NewChecker[L](units.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	opts := &core.Options[L]{
		Loss:       core.ClosedForm(loss),
		BatchSize:  c.BatchSize,
		Parsimony:  L(c.Parsimony),
		Evaluator:  expr.Evaluator[L]{},
		Complexity: expr.Complexity{},
		Dimensions: checker,
	}
	if c.DimensionalConstraintPenalty != nil {
		p := L(*c.DimensionalConstraintPenalty)
		opts.DimensionalConstraintPenalty = &p
	}
	if c.BaselineFloor != nil {
		f := L(*c.BaselineFloor)
		opts.BaselineFloor = &f
	}
	if c.Seed != nil {
		opts.Sampler = core.NewSeededSampler(*c.Seed)
	}
	if err := opts.Validate(c.Batching); err != nil {
		return nil, err
	}
	return opts, nil
}

// BuildDataset loads the configured samples.
func BuildDataset[L core.Float](c *Config) (*core.Dataset[L], error) {
	d := c.Dataset
	var dsOpts []core.DatasetOption[L]
	if d.XUnits != nil || d.YUnits != "" {
		dsOpts = append(dsOpts, core.WithUnits[L](d.XUnits, d.YUnits))
	}
	if d.VariableNames != nil {
		dsOpts = append(dsOpts, core.WithVariableNames[L](d.VariableNames))
	}

	var (
		ds  *core.Dataset[L]
		err error
	)
	if d.Inline() {
		ds, err = dataset.FromRows[L](d.Rows, d.Targets, d.SampleWeights, dsOpts...)
	} else {
		ds, err = fromFiles[L](d, dsOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset: %w", err)
	}

	checker, err := units.NewChecker[L](units.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	if err := checker.Validate(ds); err != nil {
		return nil, fmt.Errorf("invalid units: %w", err)
	}
	return ds, nil
}

func fromFiles[L core.Float](d DatasetConfig, dsOpts []core.DatasetOption[L]) (*core.Dataset[L], error) {
	x, err := dataset.LoadNpy(d.X)
	if err != nil {
		return nil, err
	}
	y, err := dataset.LoadNpy(d.Y)
	if err != nil {
		return nil, err
	}
	var w mat.Matrix
	if d.Weights != "" {
		wd, err := dataset.LoadNpy(d.Weights)
		if err != nil {
			return nil, err
		}
		w = wd
	}
	return dataset.FromDense[L](x, y, w, dsOpts...)
}
