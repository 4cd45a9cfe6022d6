package scimath

import (
	"fmt"
	"math"
	"math/big"
)

// Node is a quadrature abscissa together with its weight.
type Node struct {
	X *big.Float
	W *big.Float
}

// Nodes is a sequence of quadrature nodes in generation order.
type Nodes []Node

// Clone returns a deep copy of ns.
func (ns Nodes) Clone() Nodes {
	if ns == nil {
		return nil
	}
	c := make(Nodes, len(ns))
	for i, n := range ns {
		c[i] = Node{
			X: new(big.Float).Copy(n.X),
			W: new(big.Float).Copy(n.W),
		}
	}
	return c
}

// MaxDegree is the largest degree accepted by the node generators.
const MaxDegree = 30

// glMaxIter bounds the Newton iterations spent on a single Legendre root.
const glMaxIter = 100

func checkDegree(op string, degree int) error {
	switch {
	case degree < 1:
		return newDomainError(op, fmt.Sprintf("degree %v is below 1", degree), nil)
	case degree > MaxDegree:
		return newDomainError(op, fmt.Sprintf("degree %v exceeds %v", degree, MaxDegree), nil)
	}
	return nil
}

// GaussLegendreNodes returns the Gauss–Legendre rule of the given degree on
// [-1, 1] with abscissas and weights rounded to prec bits.
//
// Degree 1 is the classical 3-point rule.
// Degree d > 1 has 3·2^(d-1) points, found by Newton iteration on the
// Legendre polynomial.
func GaussLegendreNodes(prec uint, degree int) (Nodes, error) {
	if err := checkDegree("GaussLegendreNodes", degree); err != nil {
		return nil, err
	}
	if prec < 1 {
		return nil, newDomainError("GaussLegendreNodes", "precision must be at least 1 bit", nil)
	}
	if degree == 1 {
		return gaussLegendre3(prec), nil
	}
	return gaussLegendre(prec, degree), nil
}

// gaussLegendre3 returns the 3-point rule.
func gaussLegendre3(prec uint) Nodes {
	wp := prec + 16
	x := fromInt(wp, 3)
	x.Quo(x, fromInt(wp, 5))
	x = fsqrt(prec, x)
	w := fromInt(wp, 5)
	w.Quo(w, fromInt(wp, 9))
	w0 := fromInt(wp, 8)
	w0.Quo(w0, fromInt(wp, 9))
	return Nodes{
		{X: x, W: fset(prec, w)},
		{X: newFloat(prec).Neg(x), W: fset(prec, w)},
		{X: newFloat(prec), W: fset(prec, w0)},
	}
}

func gaussLegendre(prec uint, degree int) Nodes {
	n := 3 << (degree - 1)
	wp := prec + prec/2
	eps := fpow2(wp, -int(prec)-8)
	nodes := make(Nodes, 0, n)

	p0, p1, p2 := getFloat(wp), getFloat(wp), getFloat(wp)
	defer putFloat(p0)
	defer putFloat(p1)
	defer putFloat(p2)
	tmp, step := getFloat(wp), getFloat(wp)
	defer putFloat(tmp)
	defer putFloat(step)
	kf := getFloat(wp)
	defer putFloat(kf)

	nf := fromInt(wp, int64(n))
	one := fromInt(wp, 1)
	dp := newFloat(wp)
	for j := 1; j < n/2+1; j++ {
		seed := math.Cos(math.Pi * (float64(j) - 0.25) / (float64(n) + 0.5))
		r := newFloat(wp).SetFloat64(seed)
		for it := 0; it < glMaxIter; it++ {
			// Legendre recurrence up to P_n(r) and P_(n-1)(r)
			p0.SetInt64(1)
			p1.Set(r)
			for k := 2; k <= n; k++ {
				kf.SetInt64(int64(2*k - 1))
				p2.Mul(kf, r)
				p2.Mul(p2, p1)
				kf.SetInt64(int64(k - 1))
				tmp.Mul(kf, p0)
				p2.Sub(p2, tmp)
				kf.SetInt64(int64(k))
				p2.Quo(p2, kf)
				p0.Set(p1)
				p1.Set(p2)
			}
			// P'_n = n(r·P_n - P_(n-1)) / (r² - 1)
			dp.Mul(r, p1)
			dp.Sub(dp, p0)
			dp.Mul(dp, nf)
			tmp.Mul(r, r)
			tmp.Sub(tmp, one)
			dp.Quo(dp, tmp)
			step.Quo(p1, dp)
			r.Sub(r, step)
			if step.Abs(step).Cmp(eps) <= 0 {
				break
			}
		}
		// w = 2 / ((1 - r²) · P'_n²)
		w := newFloat(wp).Mul(r, r)
		w.Sub(one, w)
		tmp.Mul(dp, dp)
		w.Mul(w, tmp)
		w.Quo(fromInt(wp, 2), w)
		x := fset(prec, r)
		w = fset(prec, w)
		nodes = append(nodes,
			Node{X: x, W: w},
			Node{X: newFloat(prec).Neg(x), W: fset(prec, w)},
		)
	}
	return nodes
}

// TanhSinhNodes returns the tanh-sinh rule of the given degree on [-1, 1]
// with abscissas and weights computed at prec+30 bits.
// Generation stops once the abscissas are within 2^(-prec-10) of ±1.
func TanhSinhNodes(prec uint, degree int) (Nodes, error) {
	return tanhSinhNodes(DefaultConstants, prec, degree)
}

func tanhSinhNodes(consts *Constants, prec uint, degree int) (Nodes, error) {
	if err := checkDegree("TanhSinhNodes", degree); err != nil {
		return nil, err
	}
	if prec < 1 {
		return nil, newDomainError("TanhSinhNodes", "precision must be at least 1 bit", nil)
	}
	wp := prec + 30
	tol := fpow2(wp, -int(prec)-10)
	pi4 := consts.Pi(wp)
	pi4.Quo(pi4, fromInt(wp, 4))

	t0 := fpow2(wp, -degree)
	var nodes Nodes
	h := newFloat(wp)
	if degree == 1 {
		h.Set(t0)
		nodes = append(nodes, Node{X: newFloat(wp), W: newFloat(wp).Mul(pi4, fromInt(wp, 2))})
	} else {
		h.Mul(t0, fromInt(wp, 2))
	}
	eh := fexp(wp, h)
	ehInv := newFloat(wp).Quo(fromInt(wp, 1), eh)

	et := fexp(wp, t0)
	a := newFloat(wp).Mul(pi4, et)
	b := newFloat(wp).Quo(pi4, et)

	one := fromInt(wp, 1)
	two := fromInt(wp, 2)
	diff := newFloat(wp)
	inv := newFloat(wp)
	maxIter := 1 + 20<<degree
	for i := 0; i < maxIter; i++ {
		c := fexp(wp, diff.Sub(a, b))
		inv.Quo(one, c)
		co := newFloat(wp).Add(c, inv)
		co.Quo(co, two)
		si := newFloat(wp).Sub(c, inv)
		si.Quo(si, two)
		x := newFloat(wp).Quo(si, co)
		w := newFloat(wp).Add(a, b)
		co.Mul(co, co)
		w.Quo(w, co)
		if diff.Sub(x, one).Abs(diff).Cmp(tol) <= 0 {
			break
		}
		nodes = append(nodes,
			Node{X: x, W: w},
			Node{X: newFloat(wp).Neg(x), W: fset(wp, w)},
		)
		a.Mul(a, eh)
		b.Mul(b, ehInv)
	}
	return nodes, nil
}
