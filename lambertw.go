package scimath

import (
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"
)

// halleyMaxIter bounds the Halley refinement in [LambertW].
const halleyMaxIter = 100

// branchNeighborhood is the distance from -1/e within which the Puiseux
// series is tried first.
const branchNeighborhood = 0.05

// LambertW returns the solution w of w·e^w = z on branch k, rounded to c.
//
// Only the real branches k = 0 and k = -1 are supported.
// Other branches, arguments below -1/e and positive arguments on
// branch -1 have no real value; for them LambertW returns [ErrNaN].
// If Halley's iteration fails to converge, the error is a [*ConvergenceError].
func LambertW(c Context, z *big.Float, k int) (w *big.Float, err error) {
	return lambertW(DefaultConstants, c, z, k)
}

func lambertW(consts *Constants, c Context, z *big.Float, k int) (w *big.Float, err error) {
	defer catchNaN(&err)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if k != 0 && k != -1 {
		return nil, fmt.Errorf("LambertW(%v, %v): branch is not real: %w", z, k, ErrNaN)
	}

	// Special values
	switch {
	case z.Sign() == 0:
		if k == 0 {
			return c.Float(), nil
		}
		return c.Float().SetInf(true), nil
	case z.IsInf():
		if k == 0 && z.Sign() > 0 {
			return c.Float().SetInf(false), nil
		}
		return nil, fmt.Errorf("LambertW(%v, %v): %w", z, k, ErrNaN)
	case k == -1 && z.Sign() > 0:
		return nil, fmt.Errorf("LambertW(%v, %v): argument is positive: %w", z, k, ErrNaN)
	}

	wp := c.Prec + 30
	tol := float64(c.Prec) - 5
	zw := fset(wp, z)
	e := consts.E(wp)
	delta := newFloat(wp).Quo(fromInt(wp, 1), e)
	delta.Add(delta, zw)
	switch delta.Sign() {
	case -1:
		return nil, fmt.Errorf("LambertW(%v, %v): argument is below -1/e: %w", z, k, ErrNaN)
	case 0:
		return c.Round(fromInt(wp, -1)), nil
	}

	var seed *big.Float
	magz := Magnitude(zw)
	switch {
	case magz < 1 && delta.Cmp(big.NewFloat(branchNeighborhood)) < 0:
		s, ok := lambertSeries(consts, wp, tol, zw, delta, k)
		if ok {
			Logger().Debug("lambertw series converged", zap.Int("branch", k))
			return c.Round(s), nil
		}
		seed = s
	case k == 0:
		seed = lambertSeedPrincipal(wp, zw, magz)
	default:
		// W_-1(z) ≈ l1 - ln(-l1) with l1 = ln(-z)
		l1 := flog(wp, newFloat(wp).Neg(zw))
		seed = flog(wp, newFloat(wp).Neg(l1))
		seed.Sub(l1, seed)
	}

	w, iters, err := halley(wp, tol, zw, seed, halleyMaxIter)
	if err != nil {
		return nil, err
	}
	Logger().Debug("lambertw halley converged",
		zap.Int("branch", k),
		zap.Int("iterations", iters),
	)
	return c.Round(w), nil
}

// lambertSeedPrincipal returns a starting point for Halley's iteration
// on branch 0.
func lambertSeedPrincipal(wp uint, z *big.Float, magz float64) *big.Float {
	switch {
	case magz < -1:
		// z(1 - z)
		w := newFloat(wp).Sub(fromInt(wp, 1), z)
		return w.Mul(w, z)
	case z.Cmp(big.NewFloat(2.5)) < 0:
		// 0.2 + 0.3z
		w := newFloat(wp).Mul(z, newFloat(wp).SetFloat64(0.3))
		return w.Add(w, newFloat(wp).SetFloat64(0.2))
	}
	// l1 - l2 + l2/l1 + l2(l2 - 2)/(2l1²)
	l1 := flog(wp, z)
	l2 := flog(wp, l1)
	w := newFloat(wp).Sub(l1, l2)
	t := newFloat(wp).Quo(l2, l1)
	w.Add(w, t)
	t.Sub(l2, fromInt(wp, 2))
	t.Mul(t, l2)
	d := newFloat(wp).Mul(l1, l1)
	d.Mul(d, fromInt(wp, 2))
	t.Quo(t, d)
	return w.Add(w, t)
}

// lambertSeries sums the Puiseux expansion of W around the branch point
// -1/e in powers of p = ±√(2(e·z+1)).
// It reports whether the last term fell below 2^(-tol).
func lambertSeries(consts *Constants, wp uint, tol float64, z, delta *big.Float, k int) (*big.Float, bool) {
	cancellation := -Magnitude(delta)
	if cancellation < 0 {
		cancellation = 0
	}
	sp := wp + uint(cancellation)
	e := consts.E(sp)
	p := newFloat(sp).Mul(e, z)
	p.Add(p, fromInt(sp, 1))
	p.Mul(p, fromInt(sp, 2))
	if p.Sign() < 0 {
		p.SetInt64(0)
	}
	p = fsqrt(sp, p)
	if k == -1 {
		p.Neg(p)
	}

	terms := int(math.Max(2, cancellation))
	u := []*big.Float{fromInt(wp, -1), fromInt(wp, 1)}
	a := []*big.Float{fromInt(wp, 2), fromInt(wp, -1)}
	sum := newFloat(wp).Sub(p, fromInt(wp, 1))
	pl := newFloat(wp).Set(p)
	term := newFloat(wp)
	tmp := newFloat(wp)
	for l := 2; l <= terms; l++ {
		// a[l] = Σ u[j]·u[l+1-j] for 2 <= j < l
		al := newFloat(wp)
		for j := 2; j < l; j++ {
			al.Add(al, tmp.Mul(u[j], u[l+1-j]))
		}
		a = append(a, al)
		// u[l] = (l-1)(u[l-2]/2 + a[l-2]/4)/(l+1) - a[l]/2 - u[l-1]/(l+1)
		lp1 := fromInt(wp, int64(l+1))
		ul := newFloat(wp).Quo(u[l-2], fromInt(wp, 2))
		ul.Add(ul, tmp.Quo(a[l-2], fromInt(wp, 4)))
		ul.Mul(ul, fromInt(wp, int64(l-1)))
		ul.Quo(ul, lp1)
		ul.Sub(ul, tmp.Quo(al, fromInt(wp, 2)))
		ul.Sub(ul, tmp.Quo(u[l-1], lp1))
		u = append(u, ul)

		pl.Mul(pl, p)
		term.Mul(ul, pl)
		sum.Add(sum, term)
		if Magnitude(term) < -tol {
			return sum, true
		}
	}
	return sum, false
}

// halley refines w towards the root of w·e^w - z.
// It fails with a [*ConvergenceError] after maxIter steps.
func halley(wp uint, tol float64, z, w *big.Float, maxIter int) (*big.Float, int, error) {
	w = fset(wp, w)
	wn := newFloat(wp)
	wew := newFloat(wp)
	d := newFloat(wp)
	t := newFloat(wp)
	den := newFloat(wp)
	two := fromInt(wp, 2)
	for i := 1; i <= maxIter; i++ {
		ew := fexp(wp, w)
		wew.Mul(w, ew)
		d.Sub(wew, z)
		// t = (w+2)·Δ/(2w+2)
		t.Add(w, two)
		t.Mul(t, d)
		den.Mul(w, two)
		den.Add(den, two)
		t.Quo(t, den)
		// w' = w - Δ/(wew + ew - t)
		den.Add(wew, ew)
		den.Sub(den, t)
		wn.Quo(d, den)
		wn.Sub(w, wn)
		t.Sub(wn, w)
		if t.Sign() == 0 || Magnitude(t) <= Magnitude(wn)-tol {
			return wn, i, nil
		}
		w, wn = wn, w
	}
	return nil, maxIter, &ConvergenceError{Op: "LambertW", Iterations: maxIter}
}
