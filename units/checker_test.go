package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/fitness/core"
	"github.com/snow-ghost/fitness/expr"
	"github.com/snow-ghost/fitness/testkit"
)

func unitDataset(t *testing.T, xUnits []string, yUnits string) *core.Dataset[float64] {
	t.Helper()
	ds, err := core.NewDataset(
		[][]float64{{1, 2, 3}, {1, 1, 2}, {0, 1, 0}},
		[]float64{1, 2, 1.5},
		nil,
		core.WithUnits[float64](xUnits, yUnits),
	)
	require.NoError(t, err)
	return ds
}

func TestChecker_Violates(t *testing.T) {
	c, err := NewChecker[float64](0)
	require.NoError(t, err)
	ds := unitDataset(t, []string{"m", "s", ""}, "m/s")

	x0, x1, x2 := expr.Feature(0), expr.Feature(1), expr.Feature(2)
	tests := []struct {
		name string
		tree *expr.Node
		want bool
	}{
		{"velocity", expr.MustBinary("div", x0, x1), false},
		{"scaled velocity", expr.MustBinary("mul", expr.Const(3), expr.MustBinary("div", x0, x1)), false},
		{"length plus time", expr.MustBinary("add", x0, x1), true},
		{"length plus constant", expr.MustBinary("div", expr.MustBinary("add", x0, expr.Const(1)), x1), false},
		{"wrong target", x0, true},
		{"sin of length", expr.MustBinary("div", expr.MustUnary("sin", x0), x1), true},
		{"sin of ratio", expr.MustBinary("mul", expr.MustUnary("sin", expr.MustBinary("div", x0, x0)), expr.MustBinary("div", x0, x1)), false},
		{"sqrt of square", expr.MustBinary("div", expr.MustUnary("sqrt", expr.MustUnary("square", x0)), x1), false},
		{"constant power", expr.MustBinary("div", expr.MustBinary("pow", x0, expr.Const(2)), x1), true},
		{"dimensioned exponent", expr.MustBinary("pow", x2, x0), true},
		{"constant only", expr.Const(4), false},
		{"dimensionless feature", expr.MustBinary("mul", x2, expr.MustBinary("div", x0, x1)), false},
		{"feature out of range", expr.Feature(5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Violates(tt.tree, ds, nil), tt.tree.String())
		})
	}
}

func TestChecker_NoTargetUnits(t *testing.T) {
	c, err := NewChecker[float64](4)
	require.NoError(t, err)
	ds := unitDataset(t, []string{"m", "s", ""}, "")

	assert.False(t, c.Violates(expr.Feature(0), ds, nil))
	assert.True(t, c.Violates(expr.MustBinary("sub", expr.Feature(0), expr.Feature(1)), ds, nil))
}

func TestChecker_NoUnits(t *testing.T) {
	c, err := NewChecker[float64](0)
	require.NoError(t, err)
	ds := testkit.LinearDataset[float64]()

	assert.False(t, c.Violates(expr.MustUnary("exp", expr.Feature(0)), ds, nil))
	assert.False(t, c.Violates(&testkit.Prediction[float64]{}, ds, nil))
}

func TestChecker_TreeTypes(t *testing.T) {
	c, err := NewChecker[float64](0)
	require.NoError(t, err)
	ds := unitDataset(t, []string{"m", "s", ""}, "m/s")

	assert.False(t, c.Violates(core.ConstantTree[float64]{Value: 1}, ds, nil))
	assert.True(t, c.Violates(&testkit.Prediction[float64]{}, ds, nil))
}

func TestChecker_Validate(t *testing.T) {
	c, err := NewChecker[float64](0)
	require.NoError(t, err)

	assert.NoError(t, c.Validate(unitDataset(t, []string{"m", "s", ""}, "m/s")))
	assert.ErrorIs(t, c.Validate(unitDataset(t, []string{"m", "parsec", ""}, "m")), ErrUnknownUnit)
	assert.ErrorIs(t, c.Validate(unitDataset(t, []string{"m", "s", ""}, "lightyear")), ErrUnknownUnit)
}

func TestChecker_PenalizesLoss(t *testing.T) {
	c, err := NewChecker[float64](0)
	require.NoError(t, err)
	ds := unitDataset(t, []string{"m", "s", ""}, "m/s")
	opts := &core.Options[float64]{
		Loss:       core.ClosedForm[float64](core.L2DistLoss[float64]{}),
		Evaluator:  expr.Evaluator[float64]{},
		Dimensions: c,
	}

	good := expr.MustBinary("div", expr.Feature(0), expr.Feature(1))
	bad := expr.MustBinary("add", expr.Feature(0), expr.Feature(1))

	assert.Equal(t, core.EvalLoss[float64](good, ds, opts, false, nil), core.EvalLoss[float64](good, ds, opts, true, nil))
	assert.InDelta(t, core.EvalLoss[float64](bad, ds, opts, false, nil)+1000, core.EvalLoss[float64](bad, ds, opts, true, nil), 1e-9)
}
