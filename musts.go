package scimath

import (
	"fmt"
	"math/big"
)

// MustLambertW is like [LambertW] but panics if computing error.
func MustLambertW(c Context, z *big.Float, k int) *big.Float {
	w, err := LambertW(c, z, k)
	if err != nil {
		panic(fmt.Sprintf("MustLambertW(%v, %v) failed: %v", z, k, err))
	}
	return w
}

// MustGaussLegendreNodes is like [GaussLegendreNodes] but panics if the
// degree is out of range.
func MustGaussLegendreNodes(prec uint, degree int) Nodes {
	nodes, err := GaussLegendreNodes(prec, degree)
	if err != nil {
		panic(fmt.Sprintf("MustGaussLegendreNodes(%v, %v) failed: %v", prec, degree, err))
	}
	return nodes
}

// MustTanhSinhNodes is like [TanhSinhNodes] but panics if the degree is out
// of range.
func MustTanhSinhNodes(prec uint, degree int) Nodes {
	nodes, err := TanhSinhNodes(prec, degree)
	if err != nil {
		panic(fmt.Sprintf("MustTanhSinhNodes(%v, %v) failed: %v", prec, degree, err))
	}
	return nodes
}

// MustTransformNodes is like [TransformNodes] but panics if the interval is
// not supported.
func MustTransformNodes(prec uint, nodes Nodes, a, b *big.Float) {
	if err := TransformNodes(prec, nodes, a, b); err != nil {
		panic(fmt.Sprintf("MustTransformNodes(%v, %v) failed: %v", a, b, err))
	}
}

// MustParseRoundingMode is like [ParseRoundingMode] but panics if the string
// is not a rounding mode.
func MustParseRoundingMode(s string) RoundingMode {
	m, err := ParseRoundingMode(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseRoundingMode(%q) failed: %v", s, err))
	}
	return m
}
