package scimath

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type constKind uint8

const (
	constPi constKind = iota
	constE
	constEuler
)

var constNames = [...]string{
	constPi:    "pi",
	constE:     "e",
	constEuler: "euler",
}

type constKey struct {
	kind constKind
	prec uint
}

// DefaultCapacity is the number of entries held by [DefaultConstants].
const DefaultCapacity = 64

// Constants is a bounded cache of mathematical constants keyed by precision.
// Concurrent requests for the same constant at the same precision are
// computed once.
// Constants is safe for concurrent use.
type Constants struct {
	mu       sync.RWMutex
	values   map[constKey]*big.Float
	order    []constKey
	capacity int
	group    singleflight.Group
}

// DefaultConstants is the cache used by the package-level functions.
var DefaultConstants = NewConstants(DefaultCapacity)

// NewConstants returns an empty cache holding at most capacity values.
// A non-positive capacity selects [DefaultCapacity].
func NewConstants(capacity int) *Constants {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Constants{
		values:   make(map[constKey]*big.Float),
		capacity: capacity,
	}
}

// Pi returns π rounded to prec bits.
func (c *Constants) Pi(prec uint) *big.Float {
	return c.get(constPi, prec)
}

// E returns Euler's number rounded to prec bits.
func (c *Constants) E(prec uint) *big.Float {
	return c.get(constE, prec)
}

// Euler returns the Euler–Mascheroni constant γ rounded to prec bits.
func (c *Constants) Euler(prec uint) *big.Float {
	return c.get(constEuler, prec)
}

// Len returns the number of cached values.
func (c *Constants) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Clear removes all cached values.
func (c *Constants) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.values)
	c.order = c.order[:0]
}

func (c *Constants) get(kind constKind, prec uint) *big.Float {
	if v := c.lookup(kind, prec); v != nil {
		return v
	}
	key := fmt.Sprintf("%v/%v", constNames[kind], prec)
	v, _, _ := c.group.Do(key, func() (any, error) {
		if v := c.lookup(kind, prec); v != nil {
			return v, nil
		}
		v := computeConst(kind, prec)
		c.store(constKey{kind, prec}, v)
		Logger().Debug("computed constant",
			zap.String("name", constNames[kind]),
			zap.Uint("prec", prec),
		)
		return v, nil
	})
	return fset(prec, v.(*big.Float))
}

// lookup returns a copy of a cached value rounded to prec, or nil.
// Without an exact hit the entry with the smallest higher precision is
// used, and only if rounding it cannot differ from rounding the constant.
func (c *Constants) lookup(kind constKind, prec uint) *big.Float {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.values[constKey{kind, prec}]; ok {
		return fset(prec, v)
	}
	var best *big.Float
	var bestPrec uint
	for k, v := range c.values {
		if k.kind == kind && k.prec > prec && (best == nil || k.prec < bestPrec) {
			best, bestPrec = v, k.prec
		}
	}
	if best == nil {
		return nil
	}
	return roundExact(prec, best)
}

// roundExact rounds v to prec if every value within half an ulp of v
// rounds to the same result, and returns nil otherwise.
func roundExact(prec uint, v *big.Float) *big.Float {
	z := fset(prec, v)
	if v.Sign() == 0 || v.IsInf() {
		return z
	}
	p := v.Prec()
	half := fpow2(p+2, v.MantExp(nil)-int(p)-1)
	lo := newFloat(p+2).Sub(v, half)
	hi := newFloat(p+2).Add(v, half)
	if fset(prec, lo).Cmp(z) != 0 || fset(prec, hi).Cmp(z) != 0 {
		return nil
	}
	return z
}

func (c *Constants) store(key constKey, v *big.Float) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return
	}
	for len(c.order) >= c.capacity {
		delete(c.values, c.order[0])
		c.order = c.order[1:]
	}
	c.values[key] = v
	c.order = append(c.order, key)
}

func computeConst(kind constKind, prec uint) *big.Float {
	switch kind {
	case constPi:
		return computePi(prec)
	case constE:
		return fexp(prec, fromInt(prec+16, 1))
	case constEuler:
		return computeEuler(prec)
	}
	panic(fmt.Sprintf("unknown constant %v", kind))
}

// computePi evaluates π with the Brent–Salamin arithmetic-geometric mean.
func computePi(prec uint) *big.Float {
	wp := prec + 64
	a := fromInt(wp, 1)
	b := fsqrt(wp, fromInt(wp, 2))
	b.Quo(a, b)
	t := newFloat(wp).SetFloat64(0.25)
	p := fromInt(wp, 1)
	an := newFloat(wp)
	d := newFloat(wp)
	for i := 0; i < 64; i++ {
		an.Add(a, b)
		an.Quo(an, fromInt(wp, 2))
		b.Mul(a, b)
		b.Sqrt(b)
		d.Sub(a, an)
		d.Mul(d, d)
		d.Mul(d, p)
		t.Sub(t, d)
		a.Set(an)
		p.Mul(p, fromInt(wp, 2))
		d.Sub(a, b)
		if d.Sign() == 0 || Magnitude(d) < -float64(wp) {
			break
		}
	}
	z := newFloat(wp).Add(a, b)
	z.Mul(z, z)
	t.Mul(t, fromInt(wp, 4))
	return fset(prec, z.Quo(z, t))
}

// computeEuler evaluates γ with the Brent–McMillan algorithm.
func computeEuler(prec uint) *big.Float {
	n := int64(math.Ceil(float64(prec+2)*math.Ln2/4)) + 1
	wp := prec + 64 + 2*uint(bits.Len64(uint64(n)))
	nf := fromInt(wp, n)
	n2 := newFloat(wp).Mul(nf, nf)
	a := flog(wp, nf)
	a.Neg(a)
	b := fromInt(wp, 1)
	u := newFloat(wp).Set(a)
	v := fromInt(wp, 1)
	kf := newFloat(wp)
	tmp := newFloat(wp)
	kmax := int64(math.Ceil(3.5911*float64(n))) + 1
	for k := int64(1); k <= kmax; k++ {
		kf.SetInt64(k)
		// b = b * n² / k²
		b.Mul(b, n2)
		b.Quo(b, kf)
		b.Quo(b, kf)
		// a = (a * n² / k + b) / k
		a.Mul(a, n2)
		a.Quo(a, kf)
		a.Add(a, b)
		a.Quo(a, kf)
		u.Add(u, a)
		v.Add(v, b)
		if k > n && Magnitude(tmp.Abs(a)) < Magnitude(u)-float64(wp) && Magnitude(b) < Magnitude(v)-float64(wp) {
			break
		}
	}
	return fset(prec, u.Quo(u, v))
}

// Pi returns π rounded to prec bits using [DefaultConstants].
func Pi(prec uint) *big.Float {
	return DefaultConstants.Pi(prec)
}

// E returns Euler's number rounded to prec bits using [DefaultConstants].
func E(prec uint) *big.Float {
	return DefaultConstants.E(prec)
}

// EulerGamma returns γ rounded to prec bits using [DefaultConstants].
func EulerGamma(prec uint) *big.Float {
	return DefaultConstants.Euler(prec)
}

// ClearCaches releases the values held by [DefaultConstants].
// It is safe to call at any time and more than once.
func ClearCaches() {
	DefaultConstants.Clear()
}
