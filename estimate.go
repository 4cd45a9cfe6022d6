package scimath

import (
	"math"
	"math/big"
)

// EstimateError extrapolates the error of the last element of a sequence of
// successive approximations, most recent last.
//
// With fewer than two estimates the error is eps. With two it is the distance
// between them. Otherwise it is 10^⌊d⌋, where
//
//	d = min(max(d1²/d2, 2·d1, -prec), 0)
//	d1 = log10|last - prev|
//	d2 = log10|last - prevprev|
//
// so the result lies between 10^(-prec) and 1. The error is zero once the
// last three estimates agree.
func EstimateError(prec uint, eps *big.Float, estimates []*big.Float) *big.Float {
	n := len(estimates)
	if n < 2 {
		return fset(prec, eps)
	}
	last, prev := estimates[n-1], estimates[n-2]
	diff1 := newFloat(prec).Sub(last, prev)
	if n == 2 {
		return diff1.Abs(diff1)
	}
	prevprev := estimates[n-3]
	if last.Cmp(prev) == 0 && last.Cmp(prevprev) == 0 {
		return newFloat(prec)
	}
	diff2 := newFloat(prec).Sub(last, prevprev)
	d1 := log10Abs(diff1)
	d2 := log10Abs(diff2)
	d3 := -float64(prec)
	d4 := math.Min(maxNum(maxNum(d1*d1/d2, 2*d1), d3), 0)
	return fpow10(prec, int(math.Floor(d4)))
}

// maxNum is like math.Max but ignores NaN operands.
func maxNum(x, y float64) float64 {
	switch {
	case math.IsNaN(x):
		return y
	case math.IsNaN(y):
		return x
	}
	return math.Max(x, y)
}
