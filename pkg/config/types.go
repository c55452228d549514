package config

import (
	"errors"
	"fmt"

	"github.com/snow-ghost/fitness/expr"
)

// Precision names the numeric type losses and scores are computed in.
const (
	PrecisionFloat32 = "float32"
	PrecisionFloat64 = "float64"
)

// LossConfig selects a built-in elementwise loss.
type LossConfig struct {
	Name  string  `json:"name" yaml:"name"`                       // l2|l1|lp|huber|logit|epsilon_insensitive|quantile
	Param float64 `json:"param,omitempty" yaml:"param,omitempty"` // P, delta, epsilon or tau
}

// DatasetConfig points at npy files or carries the samples inline.
type DatasetConfig struct {
	X       string `json:"x,omitempty" yaml:"x,omitempty"` // samples x features .npy
	Y       string `json:"y,omitempty" yaml:"y,omitempty"`
	Weights string `json:"weights,omitempty" yaml:"weights,omitempty"`

	Rows          [][]float64 `json:"rows,omitempty" yaml:"rows,omitempty"`
	Targets       []float64   `json:"targets,omitempty" yaml:"targets,omitempty"`
	SampleWeights []float64   `json:"sample_weights,omitempty" yaml:"sample_weights,omitempty"`

	VariableNames []string `json:"variable_names,omitempty" yaml:"variable_names,omitempty"`
	XUnits        []string `json:"x_units,omitempty" yaml:"x_units,omitempty"`
	YUnits        string   `json:"y_units,omitempty" yaml:"y_units,omitempty"`
}

// Inline reports whether the samples are given in the file itself.
func (d DatasetConfig) Inline() bool { return len(d.Rows) > 0 }

// Config is the scoring configuration file.
type Config struct {
	Precision string     `json:"precision" yaml:"precision"`
	Loss      LossConfig `json:"loss" yaml:"loss"`
	Parsimony float64    `json:"parsimony" yaml:"parsimony"`
	Batching  bool       `json:"batching" yaml:"batching"`
	BatchSize int        `json:"batch_size" yaml:"batch_size"`
	Seed      *uint64    `json:"seed,omitempty" yaml:"seed,omitempty"`

	DimensionalConstraintPenalty *float64 `json:"dimensional_constraint_penalty,omitempty" yaml:"dimensional_constraint_penalty,omitempty"`
	BaselineFloor                *float64 `json:"baseline_floor,omitempty" yaml:"baseline_floor,omitempty"`

	Dataset    DatasetConfig `json:"dataset" yaml:"dataset"`
	Population []*expr.Node  `json:"-" yaml:"population"`
}

var (
	ErrPrecision  = errors.New("precision must be float32 or float64")
	ErrNoDataset  = errors.New("dataset needs x and y files or inline rows and targets")
	ErrNullMember = errors.New("population member is null")
)

// Default returns the configuration used for fields a file leaves out.
func Default() *Config {
	return &Config{
		Precision: PrecisionFloat64,
		Loss:      LossConfig{Name: "l2"},
		Parsimony: 0.0032,
		BatchSize: 50,
	}
}

// Validate checks the parts of the configuration that do not need the data.
func (c *Config) Validate() error {
	if c.Precision != PrecisionFloat32 && c.Precision != PrecisionFloat64 {
		return fmt.Errorf("%w, got %q", ErrPrecision, c.Precision)
	}
	if c.Parsimony < 0 {
		return fmt.Errorf("parsimony must be non-negative, got %g", c.Parsimony)
	}
	if c.Batching && c.BatchSize <= 0 {
		return fmt.Errorf("batching needs a positive batch_size, got %d", c.BatchSize)
	}
	if c.BaselineFloor != nil && *c.BaselineFloor <= 0 {
		return fmt.Errorf("baseline_floor must be positive, got %g", *c.BaselineFloor)
	}
	d := c.Dataset
	if !d.Inline() && (d.X == "" || d.Y == "") {
		return ErrNoDataset
	}
	if d.Inline() && len(d.Targets) != len(d.Rows) {
		return fmt.Errorf("%d inline rows but %d targets", len(d.Rows), len(d.Targets))
	}
	for k, tree := range c.Population {
		if tree == nil {
			return fmt.Errorf("%w: population[%d]", ErrNullMember, k)
		}
	}
	return nil
}
