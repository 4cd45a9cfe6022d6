package scimath

import (
	"math"
	"math/big"
	"sync"

	"github.com/ALTree/bigfloat"
)

// Helpers over big.Float.
// Unless stated otherwise, every helper returns a new value rounded to
// the requested precision and never modifies its arguments.

// fpool is a cache of reusable *big.Float instances.
var fpool = sync.Pool{
	New: func() any {
		return new(big.Float)
	},
}

// getFloat obtains a *big.Float with the given precision from the pool.
func getFloat(prec uint) *big.Float {
	return fpool.Get().(*big.Float).SetPrec(0).SetPrec(prec).SetMode(big.ToNearestEven)
}

// putFloat returns x into the pool.
func putFloat(x *big.Float) {
	fpool.Put(x)
}

// newFloat returns zero with the given precision.
func newFloat(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec)
}

// fromInt returns v with the given precision.
func fromInt(prec uint, v int64) *big.Float {
	return newFloat(prec).SetInt64(v)
}

// fset returns a copy of x rounded to prec.
func fset(prec uint, x *big.Float) *big.Float {
	return newFloat(prec).Set(x)
}

// fpow2 returns 2^e.
func fpow2(prec uint, e int) *big.Float {
	return newFloat(prec).SetMantExp(big.NewFloat(1), e)
}

// maxExpShift bounds the argument reduction in fexp.
// Beyond it the result is outside the exponent range of big.Float.
const maxExpShift = 32

// fexp returns e^x.
// The argument is halved until it is below one in magnitude, exponentiated
// and squared back.
func fexp(prec uint, x *big.Float) *big.Float {
	switch {
	case x.IsInf() && x.Sign() > 0:
		return newFloat(prec).SetInf(false)
	case x.IsInf():
		return newFloat(prec)
	case x.Sign() == 0:
		return fromInt(prec, 1)
	}
	k := x.MantExp(nil)
	if k < 0 {
		k = 0
	}
	if k > maxExpShift {
		if x.Sign() > 0 {
			return newFloat(prec).SetInf(false)
		}
		return newFloat(prec)
	}
	wp := prec + uint(k) + 16
	y := newFloat(wp).SetMantExp(x, -k)
	z := bigfloat.Exp(y)
	for i := 0; i < k; i++ {
		z.Mul(z, z)
	}
	return fset(prec, z)
}

// Exp returns e^x rounded to prec bits.
// Results outside the exponent range of big.Float saturate to +Inf or zero.
func Exp(prec uint, x *big.Float) *big.Float {
	return fexp(prec, x)
}

// flog returns the natural logarithm of x.
// It returns -Inf for zero and panics with [big.ErrNaN] for negative x.
func flog(prec uint, x *big.Float) *big.Float {
	switch {
	case x.Sign() < 0:
		panic(big.ErrNaN{})
	case x.Sign() == 0:
		return newFloat(prec).SetInf(true)
	case x.IsInf():
		return newFloat(prec).SetInf(false)
	}
	y := newFloat(prec + 16).Set(x)
	return fset(prec, bigfloat.Log(y))
}

// fsqrt returns the square root of x.
// It panics with [big.ErrNaN] for negative x.
func fsqrt(prec uint, x *big.Float) *big.Float {
	if x.Sign() == 0 {
		return newFloat(prec)
	}
	return newFloat(prec).Sqrt(x)
}

// fabs returns |x|.
func fabs(prec uint, x *big.Float) *big.Float {
	return newFloat(prec).Abs(x)
}

// Magnitude returns ⌊log2|x|⌋.
// The magnitude of zero is -Inf, the magnitude of an infinity is +Inf.
func Magnitude(x *big.Float) float64 {
	switch {
	case x.Sign() == 0:
		return math.Inf(-1)
	case x.IsInf():
		return math.Inf(1)
	}
	// |x| = m * 2^e with 0.5 <= m < 1
	return float64(x.MantExp(nil) - 1)
}

// log10Abs returns log10|x| as a float64.
// It returns -Inf for zero and +Inf for infinities.
func log10Abs(x *big.Float) float64 {
	switch {
	case x.Sign() == 0:
		return math.Inf(-1)
	case x.IsInf():
		return math.Inf(1)
	}
	mant := new(big.Float)
	e := x.MantExp(mant)
	m, _ := mant.Float64()
	return (math.Log2(math.Abs(m)) + float64(e)) * math.Log10(2)
}

// fpow10 returns 10^n.
func fpow10(prec uint, n int) *big.Float {
	z := fromInt(prec, 1)
	if n == 0 {
		return z
	}
	wp := prec + 16
	b := fromInt(wp, 10)
	p := fromInt(wp, 1)
	e := n
	if e < 0 {
		e = -e
	}
	for e > 0 {
		if e&1 == 1 {
			p.Mul(p, b)
		}
		b.Mul(b, b)
		e >>= 1
	}
	if n < 0 {
		return z.Quo(z, p)
	}
	return z.Set(p)
}
