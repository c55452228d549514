// Package dataset loads sample matrices from disk into core datasets.
package dataset

import (
	"errors"
	"fmt"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/snow-ghost/fitness/core"
)

var ErrTargetShape = errors.New("target must be a single column or row")

// LoadNpy reads a .npy array into a dense matrix. One-dimensional arrays
// become a single column.
func LoadNpy(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read npy header of %s: %w", path, err)
	}

	shape := r.Header.Descr.Shape
	if len(shape) == 1 {
		data := make([]float64, shape[0])
		if err := r.Read(&data); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return mat.NewDense(len(data), 1, data), nil
	}

	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return m, nil
}

// FromDense builds a dataset from a samples x features matrix x, a target
// vector y and optional weights w (nil for none).
func FromDense[L core.Float](x, y, w mat.Matrix, opts ...core.DatasetOption[L]) (*core.Dataset[L], error) {
	samples, features := x.Dims()

	yv, err := vector[L](y)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if len(yv) != samples {
		return nil, fmt.Errorf("target has %d samples, features have %d: %w", len(yv), samples, core.ErrShapeMismatch)
	}

	var wv []L
	if w != nil {
		if wv, err = vector[L](w); err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
	}

	cols := make([][]L, features)
	for f := range cols {
		col := make([]L, samples)
		for i := range col {
			col[i] = L(x.At(i, f))
		}
		cols[f] = col
	}
	return core.NewDataset(cols, yv, wv, opts...)
}

// FromRows builds a dataset from samples given row by row.
func FromRows[L core.Float](rows [][]float64, y, w []float64, opts ...core.DatasetOption[L]) (*core.Dataset[L], error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}
	features := len(rows[0])
	x := mat.NewDense(len(rows), features, nil)
	for i, row := range rows {
		if len(row) != features {
			return nil, fmt.Errorf("row %d has %d features, row 0 has %d: %w", i, len(row), features, core.ErrShapeMismatch)
		}
		x.SetRow(i, row)
	}
	if len(y) == 0 {
		return nil, core.ErrEmptyDataset
	}
	var wm mat.Matrix
	if w != nil {
		if len(w) == 0 {
			return nil, fmt.Errorf("empty weights: %w", core.ErrShapeMismatch)
		}
		wm = mat.NewVecDense(len(w), w)
	}
	return FromDense[L](x, mat.NewVecDense(len(y), y), wm, opts...)
}

func vector[L core.Float](m mat.Matrix) ([]L, error) {
	r, c := m.Dims()
	var n int
	var at func(int) float64
	switch {
	case c == 1:
		n, at = r, func(i int) float64 { return m.At(i, 0) }
	case r == 1:
		n, at = c, func(i int) float64 { return m.At(0, i) }
	default:
		return nil, fmt.Errorf("%w, got %dx%d", ErrTargetShape, r, c)
	}
	out := make([]L, n)
	for i := range out {
		out[i] = L(at(i))
	}
	return out, nil
}
