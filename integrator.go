package scimath

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
)

// Rule selects the quadrature rule used by an [Integrator].
type Rule uint8

const (
	// TanhSinh is the double-exponential rule. It tolerates endpoint
	// singularities.
	TanhSinh Rule = iota
	// GaussLegendre converges fastest for smooth integrands.
	GaussLegendre
)

func (r Rule) String() string {
	switch r {
	case TanhSinh:
		return "tanh-sinh"
	case GaussLegendre:
		return "gauss-legendre"
	}
	return fmt.Sprintf("Rule(%d)", uint8(r))
}

// ParseRule converts a string to a rule.
// It accepts "tanh-sinh", "ts", "gauss-legendre" and "gl".
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(s) {
	case "tanh-sinh", "ts":
		return TanhSinh, nil
	case "gauss-legendre", "gl":
		return GaussLegendre, nil
	}
	return 0, fmt.Errorf("parsing rule %q: %w", s, ErrDomain)
}

// Nodes returns the canonical rule of the given degree on [-1, 1].
func (r Rule) Nodes(prec uint, degree int) (Nodes, error) {
	return r.nodes(DefaultConstants, prec, degree)
}

func (r Rule) nodes(consts *Constants, prec uint, degree int) (Nodes, error) {
	switch r {
	case TanhSinh:
		return tanhSinhNodes(consts, prec, degree)
	case GaussLegendre:
		return GaussLegendreNodes(prec, degree)
	}
	return nil, newDomainError("Rule.Nodes", r.String(), nil)
}

// Func is an integrand. It must not modify or retain x.
type Func func(c Context, x *big.Float) (*big.Float, error)

// Result is the outcome of an integration.
type Result struct {
	Value  *big.Float
	Error  *big.Float
	Degree int
}

// DefaultCacheSize is the default number of node sequences kept by an
// [Integrator].
const DefaultCacheSize = 256

// Integrator computes definite integrals with a fixed quadrature rule,
// raising the degree until successive estimates agree.
// Generated nodes are cached, so an Integrator should be reused and closed
// with [Integrator.Close] when no longer needed.
// Integrator is safe for concurrent use.
type Integrator struct {
	rule      Rule
	maxDegree int
	cacheSize int64
	consts    *Constants
	logger    *zap.Logger
	cache     *ristretto.Cache[string, Nodes]
}

// IntegratorOption configures an [Integrator].
type IntegratorOption func(*Integrator)

// WithMaxDegree limits the degree of the rule.
// Zero selects a degree based on the precision.
func WithMaxDegree(degree int) IntegratorOption {
	return func(in *Integrator) {
		in.maxDegree = degree
	}
}

// WithCacheSize sets the number of node sequences kept in memory.
func WithCacheSize(size int) IntegratorOption {
	return func(in *Integrator) {
		in.cacheSize = int64(size)
	}
}

// WithConstants sets the constant cache used for node generation.
func WithConstants(c *Constants) IntegratorOption {
	return func(in *Integrator) {
		in.consts = c
	}
}

// WithLogger sets the logger. By default the package [Logger] is used.
func WithLogger(l *zap.Logger) IntegratorOption {
	return func(in *Integrator) {
		in.logger = l
	}
}

// NewIntegrator returns an integrator for the given rule.
func NewIntegrator(rule Rule, opts ...IntegratorOption) (*Integrator, error) {
	in := &Integrator{
		rule:      rule,
		cacheSize: DefaultCacheSize,
		consts:    DefaultConstants,
	}
	for _, opt := range opts {
		opt(in)
	}
	switch {
	case rule != TanhSinh && rule != GaussLegendre:
		return nil, newDomainError("NewIntegrator", rule.String(), nil)
	case in.maxDegree < 0 || in.maxDegree > MaxDegree:
		return nil, newDomainError("NewIntegrator", fmt.Sprintf("maximum degree %v out of range", in.maxDegree), nil)
	case in.cacheSize < 1:
		return nil, newDomainError("NewIntegrator", fmt.Sprintf("cache size %v is below 1", in.cacheSize), nil)
	}
	if in.logger == nil {
		in.logger = Logger()
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, Nodes]{
		NumCounters:        10 * in.cacheSize,
		MaxCost:            in.cacheSize,
		BufferItems:        64,
		// Cost counts node sequences, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating node cache: %w", err)
	}
	in.cache = cache
	return in, nil
}

// Rule returns the quadrature rule of the integrator.
func (in *Integrator) Rule() Rule {
	return in.rule
}

// ClearCache drops all cached nodes.
func (in *Integrator) ClearCache() {
	in.cache.Clear()
}

// Close releases the node cache. The integrator must not be used afterwards.
func (in *Integrator) Close() {
	in.cache.Close()
}

// guessDegree returns the default maximum degree for the given precision.
func guessDegree(prec uint) int {
	return 6 + max(0, int(math.Ceil(math.Log2(float64(prec)/30))))
}

// Integrate returns the integral of f over consecutive pairs of points,
// for example [a, b] followed by [b, c].
// Points may be infinite. Empty intervals contribute nothing.
func (in *Integrator) Integrate(c Context, f Func, points ...*big.Float) (res Result, err error) {
	defer catchNaN(&err)
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if len(points) < 2 {
		return Result{}, newDomainError("Integrate", fmt.Sprintf("%v points given, need at least 2", len(points)), nil)
	}
	wp := c.Prec + 20
	eps := fpow2(wp, 1-int(c.Prec))
	maxDegree := in.maxDegree
	if maxDegree == 0 {
		maxDegree = min(guessDegree(c.Prec), MaxDegree)
	}

	total := newFloat(wp)
	errSum := newFloat(wp)
	degree := 0
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if a.Cmp(b) == 0 {
			continue
		}
		g, neg := f, false
		if a.IsInf() && b.IsInf() {
			// ∫ f over the real line is ∫ f(-x) + f(x) over [0, +∞).
			neg = a.Sign() > 0
			g = foldIntegrand(f)
			a, b = newFloat(wp), newFloat(wp).SetInf(false)
		}
		v, e, d, err := in.integrate(wp, eps, maxDegree, g, a, b)
		if err != nil {
			return Result{}, err
		}
		if neg {
			v.Neg(v)
		}
		total.Add(total, v)
		errSum.Add(errSum, e)
		degree = max(degree, d)
	}
	return Result{
		Value:  c.Round(total),
		Error:  fset(c.Prec, errSum),
		Degree: degree,
	}, nil
}

func foldIntegrand(f Func) Func {
	return func(c Context, x *big.Float) (*big.Float, error) {
		y, err := f(c, x)
		if err != nil {
			return nil, err
		}
		z, err := f(c, newFloat(x.Prec()).Neg(x))
		if err != nil {
			return nil, err
		}
		return newFloat(c.Prec).Add(y, z), nil
	}
}

// integrate evaluates a single interval with increasing degree until the
// estimated error drops below eps.
func (in *Integrator) integrate(wp uint, eps *big.Float, maxDegree int, f Func, a, b *big.Float) (*big.Float, *big.Float, int, error) {
	fc := Context{Prec: wp}
	var estimates []*big.Float
	prev := newFloat(wp)
	errEst := fset(wp, eps)
	degree := 0
	for degree = 1; degree <= maxDegree; degree++ {
		nodes, err := in.transformed(wp, degree, a, b)
		if err != nil {
			return nil, nil, 0, err
		}
		sum := newFloat(wp)
		t := newFloat(wp)
		for _, n := range nodes {
			fx, err := f(fc, n.X)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("evaluating integrand at %v: %w", n.X, err)
			}
			sum.Add(sum, t.Mul(n.W, fx))
		}
		if in.rule == TanhSinh {
			// Each level adds the midpoints of the previous one:
			// S_d = S_(d-1)/2 + h·Σ w·f(x) with h = 2^(-d).
			h := fpow2(wp, -degree)
			sum.Mul(sum, h)
			t.Quo(prev, fromInt(wp, 2))
			sum.Add(sum, t)
		}
		prev = sum
		estimates = append(estimates, sum)
		if degree > 1 {
			errEst = EstimateError(wp, eps, estimates)
			in.logger.Debug("quadrature step",
				zap.Stringer("rule", in.rule),
				zap.Int("degree", degree),
				zap.Int("nodes", len(nodes)),
				zap.String("error", errEst.Text('g', 10)),
			)
			if errEst.Cmp(eps) < 0 {
				break
			}
		}
	}
	return prev, errEst, min(degree, maxDegree), nil
}

// transformed returns the rule of the given degree mapped onto [a, b].
// The returned nodes are shared and must not be modified.
func (in *Integrator) transformed(wp uint, degree int, a, b *big.Float) (Nodes, error) {
	key := fmt.Sprintf("%v/%v/%v/%v/%v", in.rule, wp, degree, a.Text('p', 0), b.Text('p', 0))
	if nodes, ok := in.cache.Get(key); ok {
		return nodes, nil
	}
	canonical, err := in.canonical(wp, degree)
	if err != nil {
		return nil, err
	}
	nodes := canonical.Clone()
	if err := TransformNodes(wp, nodes, a, b); err != nil {
		return nil, err
	}
	in.cache.Set(key, nodes, 1)
	in.cache.Wait()
	return nodes, nil
}

// canonical returns the rule of the given degree on [-1, 1].
func (in *Integrator) canonical(wp uint, degree int) (Nodes, error) {
	key := fmt.Sprintf("%v/%v/%v", in.rule, wp, degree)
	if nodes, ok := in.cache.Get(key); ok {
		return nodes, nil
	}
	nodes, err := in.rule.nodes(in.consts, wp, degree)
	if err != nil {
		return nil, err
	}
	in.cache.Set(key, nodes, 1)
	in.cache.Wait()
	return nodes, nil
}
