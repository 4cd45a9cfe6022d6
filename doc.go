/*
Package scimath implements arbitrary-precision algorithms on top of [math/big]:
integer factorization, numerical calculus and the Lambert W function.

# Precision and Rounding

Real-valued operations take a [Context], which carries the precision of the
result in bits and a [RoundingMode]:

  - [Nearest]: round to nearest, ties to even.
  - [Up]: round towards positive infinity.
  - [Down]: round towards negative infinity.
  - [TowardZero]: truncate.

Internally every algorithm works at a higher precision and rounds the result
once, at the end. Arguments are never modified and results are never shared
with the package, so they can be freely reused by the caller.

[big.Float] has no NaN. Operations whose real result would be undefined
return [ErrNaN] instead.

# Factorization

[Factor] computes the prime factorization of an integer using Brent's
variant of Pollard's rho method. A [Factorizer] can bound the work spent in
the rho phase, falling back to trial division, and can be cancelled through
a [context.Context]:

	f := scimath.Factorizer{Budget: 1 << 20}
	res, err := f.FactorContext(ctx, n)

# Quadrature

[GaussLegendreNodes] and [TanhSinhNodes] generate quadrature rules on
[-1, 1]. [TransformNodes] maps a rule onto a finite, half-infinite or
infinite interval, and [EstimateError] extrapolates the error of a sequence
of approximations.

An [Integrator] combines the three. It raises the degree of the rule until
the estimated error falls below the requested precision and caches the
generated nodes between calls.

# Differentiation and Summation

[Differentiate] takes finite differences with a step far below the target
precision. [Integrator.Sum] adds up f(a), f(a+1), ..., f(b) by the
Euler–Maclaurin formula, with an integral from the integrator and correction
terms from the derivatives of f at the bounds.

# Lambert W

[LambertW] solves w·e^w = z on the real branches k = 0 and k = -1.
Near the branch point -1/e it sums a Puiseux series, elsewhere it refines an
asymptotic estimate with Halley's method.

# Constants

π, e and Euler's constant are computed on demand and cached per precision in
a [Constants] table. [ClearCaches] empties the package table.

# Logging

The package logs through [go.uber.org/zap]. By default nothing is logged;
use [SetLogger] to enable debug output.
*/
package scimath
