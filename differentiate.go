package scimath

import (
	"fmt"
	"math/big"
	"strings"
)

// Direction selects the finite difference used by [Differentiate].
type Direction uint8

const (
	// Central samples the function on both sides of the point.
	Central Direction = iota
	// Left samples the function at and below the point.
	Left
	// Right samples the function at and above the point.
	Right
)

var directionNames = [...]string{
	Central: "central",
	Left:    "left",
	Right:   "right",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection converts a string to a difference direction.
// It accepts "central", "left" and "right".
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("parsing direction %q: %w", s, ErrDomain)
}

// DefaultDiffPrecision is the default number of guard bits used by
// [Differentiate].
const DefaultDiffPrecision = 10

type diffConfig struct {
	dir      Direction
	extra    int
	relative bool
	singular bool
}

// DiffOption configures [Differentiate].
type DiffOption func(*diffConfig)

// WithDirection sets the direction of the finite difference.
// The default is [Central].
func WithDirection(d Direction) DiffOption {
	return func(cfg *diffConfig) {
		cfg.dir = d
	}
}

// WithExtraPrecision sets the number of guard bits. The step is 2^-(prec+bits)
// and the function is evaluated at (prec+2·bits)·(n+1) bits.
func WithExtraPrecision(bits int) DiffOption {
	return func(cfg *diffConfig) {
		cfg.extra = bits
	}
}

// WithRelativeStep scales the step with the magnitude of the point.
func WithRelativeStep() DiffOption {
	return func(cfg *diffConfig) {
		cfg.relative = true
	}
}

// WithSingular avoids evaluating the function at the point itself by
// shifting every sample by half a step.
func WithSingular() DiffOption {
	return func(cfg *diffConfig) {
		cfg.singular = true
	}
}

// Differentiate returns the n-th derivative of f at x, rounded to c.
//
// The derivative is the n-th finite difference of f with a step far below
// the target precision, taken at a working precision high enough to absorb
// the cancellation. The function is assumed smooth around x.
// For n = 0 the result is f(x), unless [WithSingular] is given.
func Differentiate(c Context, f Func, x *big.Float, n int, opts ...DiffOption) (d *big.Float, err error) {
	defer catchNaN(&err)
	cfg := diffConfig{extra: DefaultDiffPrecision}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch {
	case n < 0:
		return nil, newDomainError("Differentiate", fmt.Sprintf("order %v is negative", n), nil)
	case cfg.extra < 0:
		return nil, newDomainError("Differentiate", fmt.Sprintf("extra precision %v is negative", cfg.extra), nil)
	case int(cfg.dir) >= len(directionNames):
		return nil, newDomainError("Differentiate", cfg.dir.String(), nil)
	case x.IsInf():
		return nil, newDomainError("Differentiate", fmt.Sprintf("point %v is not finite", x), nil)
	}
	if n == 0 && !cfg.singular {
		y, err := f(c, x)
		if err != nil {
			return nil, err
		}
		return c.Round(y), nil
	}

	wp64 := (uint64(c.Prec) + 2*uint64(cfg.extra)) * uint64(n+1)
	if wp64 > big.MaxPrec {
		return nil, newDomainError("Differentiate", fmt.Sprintf("working precision %v exceeds %v", wp64, uint(big.MaxPrec)), nil)
	}
	wp := uint(wp64)
	e := -int(c.Prec) - cfg.extra
	if cfg.relative && x.Sign() != 0 {
		e += x.MantExp(nil)
	}
	h := fpow2(wp, e)

	// Samples are x + k·h for k = first, first+step, ..., combined with the
	// coefficients of the n-th forward difference.
	first, step := 0, 1
	norm := newFloat(wp)
	switch cfg.dir {
	case Central:
		first, step = -n, 2
		norm.Mul(h, fromInt(wp, 2))
	case Left:
		h.Neg(h)
		norm.Set(h)
	case Right:
		norm.Set(h)
	}
	x0 := newFloat(max(wp, x.Prec())).Set(x)
	if cfg.singular {
		x0.Add(x0, newFloat(wp).SetMantExp(h, -1))
	}

	fc := Context{Prec: wp}
	sum := newFloat(wp)
	xk := newFloat(x0.Prec())
	t := newFloat(wp)
	coef := big.NewInt(1)
	if n%2 == 1 {
		coef.Neg(coef)
	}
	num, den := new(big.Int), new(big.Int)
	for j := 0; j <= n; j++ {
		k := first + j*step
		xk.Mul(h, fromInt(wp, int64(k)))
		xk.Add(x0, xk)
		y, err := f(fc, xk)
		if err != nil {
			return nil, fmt.Errorf("evaluating function at %v: %w", xk, err)
		}
		t.SetInt(coef)
		sum.Add(sum, t.Mul(t, y))
		// C(n, j+1)·(-1)^(n-j-1) from C(n, j)·(-1)^(n-j)
		coef.Mul(coef, num.SetInt64(int64(j-n)))
		coef.Quo(coef, den.SetInt64(int64(j+1)))
	}
	for i := 0; i < n; i++ {
		sum.Quo(sum, norm)
	}
	return c.Round(sum), nil
}
