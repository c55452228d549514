package expr

import (
	"errors"
	"fmt"
	"math"
)

// Operator is a named unary or binary function over float64.
type Operator struct {
	Name  string
	Arity int
	Infix string // binary operators printed infix; empty prints as a call

	unary  func(float64) float64
	binary func(a, b float64) float64
}

var operators = map[string]*Operator{
	"add": {Name: "add", Arity: 2, Infix: "+", binary: func(a, b float64) float64 { return a + b }},
	"sub": {Name: "sub", Arity: 2, Infix: "-", binary: func(a, b float64) float64 { return a - b }},
	"mul": {Name: "mul", Arity: 2, Infix: "*", binary: func(a, b float64) float64 { return a * b }},
	"div": {Name: "div", Arity: 2, Infix: "/", binary: func(a, b float64) float64 { return a / b }},
	"pow": {Name: "pow", Arity: 2, Infix: "^", binary: math.Pow},

	"neg":    {Name: "neg", Arity: 1, unary: func(a float64) float64 { return -a }},
	"square": {Name: "square", Arity: 1, unary: func(a float64) float64 { return a * a }},
	"abs":    {Name: "abs", Arity: 1, unary: math.Abs},
	"sqrt":   {Name: "sqrt", Arity: 1, unary: math.Sqrt},
	"exp":    {Name: "exp", Arity: 1, unary: math.Exp},
	"log":    {Name: "log", Arity: 1, unary: math.Log},
	"sin":    {Name: "sin", Arity: 1, unary: math.Sin},
	"cos":    {Name: "cos", Arity: 1, unary: math.Cos},
}

// ErrUnknownOperator is returned for operator names that are not registered
// with the requested arity.
var ErrUnknownOperator = errors.New("unknown operator")

func lookup(name string, arity int) (*Operator, error) {
	op, ok := operators[name]
	if !ok || op.Arity != arity {
		return nil, fmt.Errorf("%w %q with arity %d", ErrUnknownOperator, name, arity)
	}
	return op, nil
}

// Apply1 evaluates a unary operator.
func (o *Operator) Apply1(a float64) float64 { return o.unary(a) }

// Apply2 evaluates a binary operator.
func (o *Operator) Apply2(a, b float64) float64 { return o.binary(a, b) }
