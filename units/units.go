// Package units parses SI unit strings and checks expression trees for
// dimensional consistency.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Base dimensions, in SI order.
const (
	Length = iota
	Mass
	Time
	Current
	Temperature
	Amount
	Luminosity
	numBase
)

// Dims is a vector of exponents over the SI base dimensions.
type Dims [numBase]float64

// Dimensionless is the zero vector.
var Dimensionless Dims

var ErrUnknownUnit = errors.New("unknown unit")

// symbols maps unit symbols to dimensions. Prefixed and derived units are
// expressed through their base dimensions; scale factors are irrelevant to
// dimensional analysis.
var symbols = map[string]Dims{
	"m":   {Length: 1},
	"km":  {Length: 1},
	"cm":  {Length: 1},
	"mm":  {Length: 1},
	"g":   {Mass: 1},
	"kg":  {Mass: 1},
	"s":   {Time: 1},
	"ms":  {Time: 1},
	"h":   {Time: 1},
	"A":   {Current: 1},
	"K":   {Temperature: 1},
	"mol": {Amount: 1},
	"cd":  {Luminosity: 1},
	"N":   {Mass: 1, Length: 1, Time: -2},
	"J":   {Mass: 1, Length: 2, Time: -2},
	"W":   {Mass: 1, Length: 2, Time: -3},
	"Pa":  {Mass: 1, Length: -1, Time: -2},
	"Hz":  {Time: -1},
	"C":   {Current: 1, Time: 1},
	"V":   {Mass: 1, Length: 2, Time: -3, Current: -1},
}

// Parse reads a product of unit factors such as "kg*m^2/s^2". Every factor
// after a '/' is divided. "" and "1" are dimensionless.
func Parse(s string) (Dims, error) {
	s = strings.TrimSpace(s)
	var d Dims
	if s == "" || s == "1" {
		return d, nil
	}

	sign := 1.0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '*' && s[i] != '/' {
			continue
		}
		f, err := parseFactor(s[start:i])
		if err != nil {
			return Dims{}, fmt.Errorf("parse %q: %w", s, err)
		}
		d = d.Add(f.Scale(sign))
		if i < len(s) && s[i] == '/' {
			sign = -1
		}
		start = i + 1
	}
	return d, nil
}

func parseFactor(f string) (Dims, error) {
	f = strings.TrimSpace(f)
	sym, exp, hasExp := strings.Cut(f, "^")
	power := 1.0
	if hasExp {
		p, err := strconv.ParseFloat(strings.Trim(exp, "()"), 64)
		if err != nil {
			return Dims{}, fmt.Errorf("bad exponent %q: %w", exp, err)
		}
		power = p
	}
	if sym == "1" {
		return Dims{}, nil
	}
	d, ok := symbols[sym]
	if !ok {
		return Dims{}, fmt.Errorf("%w %q", ErrUnknownUnit, sym)
	}
	return d.Scale(power), nil
}

func (d Dims) Add(o Dims) Dims {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

func (d Dims) Sub(o Dims) Dims { return d.Add(o.Scale(-1)) }

func (d Dims) Scale(k float64) Dims {
	for i := range d {
		d[i] *= k
	}
	return d
}

// Equal compares exponents with a small tolerance for halved powers.
func (d Dims) Equal(o Dims) bool {
	for i := range d {
		if math.Abs(d[i]-o[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func (d Dims) IsDimensionless() bool { return d.Equal(Dimensionless) }

var baseNames = [numBase]string{"m", "kg", "s", "A", "K", "mol", "cd"}

func (d Dims) String() string {
	var parts []string
	for i, e := range d {
		switch {
		case e == 0:
		case e == 1:
			parts = append(parts, baseNames[i])
		default:
			parts = append(parts, baseNames[i]+"^"+strconv.FormatFloat(e, 'g', -1, 64))
		}
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, "*")
}
