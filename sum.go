package scimath

import (
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"
)

// sumMaxOrder bounds the order of the derivatives used by [Integrator.Sum].
const sumMaxOrder = 99

// sumCoefficients returns B_(k+1)/(k+1)! for odd k up to sumMaxOrder,
// indexed by (k-1)/2.
var sumCoefficients = sync.OnceValue(func() []*big.Rat {
	b := bernoulli(sumMaxOrder + 1)
	coefs := make([]*big.Rat, 0, (sumMaxOrder+1)/2)
	fact := big.NewInt(1)
	for m := 1; m <= sumMaxOrder+1; m++ {
		fact.Mul(fact, big.NewInt(int64(m)))
		if m%2 == 0 {
			r := new(big.Rat).SetInt(fact)
			coefs = append(coefs, r.Quo(b[m], r))
		}
	}
	return coefs
})

// bernoulli returns the Bernoulli numbers B_0 to B_n.
func bernoulli(n int) []*big.Rat {
	a := make([]*big.Rat, n+1)
	b := make([]*big.Rat, n+1)
	t := new(big.Rat)
	for m := 0; m <= n; m++ {
		a[m] = big.NewRat(1, int64(m+1))
		for j := m; j >= 1; j-- {
			t.Sub(a[j-1], a[j])
			a[j-1].Mul(t, big.NewRat(int64(j), 1))
		}
		b[m] = new(big.Rat).Set(a[0])
	}
	return b
}

// DerivativeFunc returns the n-th derivative of a function at a fixed point.
type DerivativeFunc func(c Context, n int) (*big.Float, error)

type sumConfig struct {
	da, db   DerivativeFunc
	integral *Result
}

// SumOption configures [Integrator.Sum].
type SumOption func(*sumConfig)

// WithDerivatives supplies the derivatives of the summand at the lower and
// upper bound. A nil function selects [Differentiate].
func WithDerivatives(da, db DerivativeFunc) SumOption {
	return func(cfg *sumConfig) {
		cfg.da, cfg.db = da, db
	}
}

// WithIntegral supplies the integral of the summand over the bounds and its
// error, skipping the quadrature.
func WithIntegral(value, err *big.Float) SumOption {
	return func(cfg *sumConfig) {
		cfg.integral = &Result{Value: value, Error: err}
	}
}

// Sum returns f(a) + f(a+1) + ... + f(b) by the Euler–Maclaurin formula.
//
// The bounds may be -∞ and +∞ respectively; otherwise b-a must be a
// non-negative integer. Correction terms are added until they drop below
// 2^-(prec+4) or stop shrinking by a factor of ten, in which case the last
// term is reported in the error. The integral is computed with the
// integrator's rule unless [WithIntegral] is given.
func (in *Integrator) Sum(c Context, f Func, a, b *big.Float, opts ...SumOption) (res Result, err error) {
	defer catchNaN(&err)
	var cfg sumConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if err := checkSumBounds(a, b); err != nil {
		return Result{}, err
	}
	wp := c.Prec + 10
	wc := Context{Prec: wp}
	eps := fpow2(wp, -int(c.Prec)-4)
	lowerInf, upperInf := a.IsInf(), b.IsInf()
	da := endpointDerivative(cfg.da, f, a)
	db := endpointDerivative(cfg.db, f, b)

	s := newFloat(wp)
	errSum := newFloat(wp)
	term := newFloat(wp)
	coef := newFloat(wp)
	var prev *big.Float
	order := 0
	for i, r := range sumCoefficients() {
		k := 2*i + 1
		order = k
		term.SetInt64(0)
		if !upperInf {
			v, err := db(wc, k)
			if err != nil {
				return Result{}, fmt.Errorf("derivative %v at %v: %w", k, b, err)
			}
			term.Add(term, v)
		}
		if !lowerInf {
			v, err := da(wc, k)
			if err != nil {
				return Result{}, fmt.Errorf("derivative %v at %v: %w", k, a, err)
			}
			term.Sub(term, v)
		}
		term.Mul(term, coef.SetRat(r))
		mag := fabs(wp, term)
		if k > 4 && mag.Cmp(eps) < 0 {
			s.Add(s, term)
			break
		}
		if k > 4 && prev != nil && newFloat(wp).Quo(prev, mag).Cmp(fromInt(wp, 10)) < 0 {
			errSum.Add(errSum, mag)
			break
		}
		s.Add(s, term)
		prev = mag
		if k == sumMaxOrder {
			errSum.Add(errSum, mag)
		}
	}

	half := newFloat(wp)
	for _, e := range []*big.Float{a, b} {
		if e.IsInf() {
			continue
		}
		y, err := f(wc, e)
		if err != nil {
			return Result{}, fmt.Errorf("evaluating summand at %v: %w", e, err)
		}
		s.Add(s, half.SetMantExp(y, -1))
	}

	integral := cfg.integral
	if integral == nil {
		r, err := in.Integrate(wc, f, a, b)
		if err != nil {
			return Result{}, err
		}
		integral = &r
	}
	s.Add(s, integral.Value)
	if integral.Error != nil {
		errSum.Add(errSum, integral.Error)
	}
	in.logger.Debug("euler-maclaurin sum",
		zap.Int("order", order),
		zap.Int("degree", integral.Degree),
	)
	return Result{
		Value:  c.Round(s),
		Error:  fset(c.Prec, errSum),
		Degree: integral.Degree,
	}, nil
}

func checkSumBounds(a, b *big.Float) error {
	switch {
	case a.IsInf() && a.Sign() > 0, b.IsInf() && b.Sign() < 0:
		return newDomainError("Sum", fmt.Sprintf("bounds [%v, %v]", a, b), ErrInvalidInterval)
	case a.IsInf() || b.IsInf():
		return nil
	case a.Cmp(b) > 0:
		return newDomainError("Sum", fmt.Sprintf("lower bound %v exceeds upper bound %v", a, b), nil)
	}
	ra, _ := a.Rat(nil)
	rb, _ := b.Rat(nil)
	if !rb.Sub(rb, ra).IsInt() {
		return newDomainError("Sum", fmt.Sprintf("bounds %v and %v are not an integer apart", a, b), nil)
	}
	return nil
}

// endpointDerivative returns d, or numerical derivatives of f at x if d is
// nil.
func endpointDerivative(d DerivativeFunc, f Func, x *big.Float) DerivativeFunc {
	if d != nil {
		return d
	}
	return func(c Context, n int) (*big.Float, error) {
		return Differentiate(c, f, x, n)
	}
}
