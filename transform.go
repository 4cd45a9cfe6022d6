package scimath

import (
	"math/big"
)

// TransformNodes maps a rule on [-1, 1] onto the interval [a, b] in place.
//
// Supported intervals are finite ones, (-∞, +∞), (-∞, b), (a, +∞) and the
// reversed (+∞, -∞), which negates the weights of (-∞, +∞).
// For any other combination the nodes are left untouched and an error
// wrapping [ErrInvalidInterval] is returned.
func TransformNodes(prec uint, nodes Nodes, a, b *big.Float) error {
	aInf, bInf := a.IsInf(), b.IsInf()
	aNeg, bNeg := a.Sign() < 0, b.Sign() < 0
	switch {
	case !aInf && !bInf:
		transformFinite(prec, nodes, a, b)
	case aInf && aNeg && bInf && !bNeg:
		transformReal(prec, nodes)
	case aInf && aNeg && !bInf:
		transformHalf(prec, nodes, b, true)
	case !aInf && bInf && !bNeg:
		transformHalf(prec, nodes, a, false)
	case aInf && !aNeg && bInf && bNeg:
		transformReal(prec, nodes)
		for _, n := range nodes {
			n.W.Neg(n.W)
		}
	default:
		return newDomainError("TransformNodes", "["+a.String()+", "+b.String()+"]", ErrInvalidInterval)
	}
	return nil
}

// transformFinite applies x = c·x + d, w = c·w with c = (b-a)/2, d = (b+a)/2.
// Abscissas are measured from the nearer endpoint, as b - c·(1-x) or
// a + c·(1+x), with enough bits that no node lands on a or b.
func transformFinite(prec uint, nodes Nodes, a, b *big.Float) {
	if a.Cmp(big.NewFloat(-1)) == 0 && b.Cmp(big.NewFloat(1)) == 0 {
		return
	}
	c := newFloat(prec).Sub(b, a)
	c.Quo(c, fromInt(prec, 2))
	extra := exponentGap(c, a, b)
	one := big.NewFloat(1)
	t := new(big.Float)
	for _, n := range nodes {
		xp := max(n.X.Prec(), prec) + extra
		t.SetPrec(xp)
		if n.X.Sign() >= 0 {
			t.Sub(one, n.X)
			t.Mul(t, c)
			n.X.SetPrec(xp).Sub(b, t)
		} else {
			t.Add(one, n.X)
			t.Mul(t, c)
			n.X.SetPrec(xp).Add(a, t)
		}
		widen(n.W, prec).Mul(n.W, c).SetPrec(prec)
	}
}

// exponentGap returns the number of bits by which the largest of ends
// outweighs the scale c, plus one.
func exponentGap(c *big.Float, ends ...*big.Float) uint {
	gap := 0
	for _, e := range ends {
		if e.Sign() != 0 {
			gap = max(gap, e.MantExp(nil)-c.MantExp(nil))
		}
	}
	return uint(gap) + 1
}

// widen raises the precision of x to at least prec.
func widen(x *big.Float, prec uint) *big.Float {
	if x.Prec() < prec {
		x.SetPrec(prec)
	}
	return x
}

// transformReal maps [-1, 1] onto the real line:
// x = x/√(1-x²), w = w/(1-x²)^(3/2).
func transformReal(prec uint, nodes Nodes) {
	one := fromInt(prec, 1)
	q := newFloat(prec)
	s := newFloat(prec)
	for _, n := range nodes {
		// 1-x² as (1-x)(1+x) keeps the nodes next to ±1 finite.
		q.Sub(one, n.X)
		s.Add(one, n.X)
		q.Mul(q, s)
		s.Sqrt(q)
		s.Quo(one, s)
		n.X.SetPrec(prec).Mul(n.X, s)
		s.Quo(s, q)
		n.W.SetPrec(prec).Mul(n.W, s)
	}
}

// transformHalf maps [-1, 1] onto a half-infinite interval with the finite
// end at e. With v = (1-x)/(1+x), the abscissa becomes e-v if lower is set
// (interval (-∞, e]) and e+v otherwise; the weight is scaled by u²/2 where
// u = 2/(1+x).
func transformHalf(prec uint, nodes Nodes, e *big.Float, lower bool) {
	one := fromInt(prec, 1)
	two := fromInt(prec, 2)
	extra := exponentGap(one, e)
	u := newFloat(prec)
	v, s := new(big.Float), new(big.Float)
	for _, n := range nodes {
		xp := max(n.X.Prec(), prec) + extra
		v.SetPrec(xp).Sub(one, n.X)
		s.SetPrec(xp).Add(one, n.X)
		v.Quo(v, s)
		u.Quo(two, s)
		if lower {
			n.X.SetPrec(xp).Sub(e, v)
		} else {
			n.X.SetPrec(xp).Add(e, v)
		}
		u.Mul(u, u)
		u.Quo(u, two)
		n.W.SetPrec(prec).Mul(n.W, u)
	}
}
