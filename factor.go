package scimath

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"go.uber.org/zap"
	"modernc.org/mathutil"
)

// primalityRounds is the number of Miller-Rabin rounds used to decide
// whether a factor is prime.
const primalityRounds = 50

// gcdInterval is the number of rho steps accumulated into the batch product
// between two gcd computations.
const gcdInterval = 32

// Term is a prime factor together with its multiplicity.
type Term struct {
	Prime        *big.Int
	Multiplicity *big.Int
}

// Factorization maps prime factors to their multiplicities.
// A factorization of a negative number contains the key -1 with
// multiplicity 1.
// The zero value is an empty factorization.
type Factorization struct {
	terms map[string]*Term
}

func newFactorization() *Factorization {
	return &Factorization{terms: make(map[string]*Term)}
}

// add increments the multiplicity of p by m.
func (f *Factorization) add(p *bint, m int64) {
	if f.terms == nil {
		f.terms = make(map[string]*Term)
	}
	key := p.string()
	t, ok := f.terms[key]
	if !ok {
		t = &Term{
			Prime:        new(big.Int).Set(p.bigInt()),
			Multiplicity: new(big.Int),
		}
		f.terms[key] = t
	}
	t.Multiplicity.Add(t.Multiplicity, big.NewInt(m))
}

// Len returns the number of distinct factors, including -1 if present.
func (f *Factorization) Len() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

// Multiplicity returns the multiplicity of p, or zero if p is not a factor.
func (f *Factorization) Multiplicity(p *big.Int) *big.Int {
	if f == nil {
		return new(big.Int)
	}
	t, ok := f.terms[p.String()]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(t.Multiplicity)
}

// Terms returns copies of all factors in ascending order of the prime.
func (f *Factorization) Terms() []Term {
	if f == nil {
		return nil
	}
	terms := make([]Term, 0, len(f.terms))
	for _, t := range f.terms {
		terms = append(terms, Term{
			Prime:        new(big.Int).Set(t.Prime),
			Multiplicity: new(big.Int).Set(t.Multiplicity),
		})
	}
	slices.SortFunc(terms, func(a, b Term) int {
		return a.Prime.Cmp(b.Prime)
	})
	return terms
}

// Product returns the product of all factors raised to their multiplicities.
// The product of an empty factorization is 1.
func (f *Factorization) Product() *big.Int {
	z := big.NewInt(1)
	for _, t := range f.Terms() {
		z.Mul(z, new(big.Int).Exp(t.Prime, t.Multiplicity, nil))
	}
	return z
}

// String implements the [fmt.Stringer] interface.
// For example, the factorization of -720 is "-1 * 2^4 * 3^2 * 5".
func (f *Factorization) String() string {
	terms := f.Terms()
	if len(terms) == 0 {
		return "1"
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		if t.Multiplicity.IsInt64() && t.Multiplicity.Int64() == 1 {
			parts[i] = t.Prime.String()
		} else {
			parts[i] = fmt.Sprintf("%v^%v", t.Prime, t.Multiplicity)
		}
	}
	return strings.Join(parts, " * ")
}

// Factor returns the prime factorization of n.
// Negative numbers produce the factor -1, zero produces an empty factorization.
// Factor runs until the factorization is complete.
func Factor(n *big.Int) *Factorization {
	var f Factorizer
	res, _ := f.FactorContext(context.Background(), n)
	return res
}

// FactorInt64 is like [Factor] but takes an int64.
func FactorInt64(n int64) *Factorization {
	return Factor(big.NewInt(n))
}

// Factorizer factors integers with Brent's variant of Pollard's rho.
// The zero value is ready to use and equivalent to [Factor].
type Factorizer struct {
	// Budget limits the number of rho steps spent on a single composite.
	// Once it is exceeded, primes below [TrialLimit] are divided out of the
	// composite and rho restarts on the cofactor with a new polynomial and
	// twice the budget.
	// Zero means no limit.
	Budget int
	// Logger receives debug events. When nil, the package [Logger] is used.
	Logger *zap.Logger
}

func (f *Factorizer) logger() *zap.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return Logger()
}

// Factor returns the prime factorization of n.
func (f *Factorizer) Factor(n *big.Int) *Factorization {
	res, _ := f.FactorContext(context.Background(), n)
	return res
}

// FactorContext is like [Factorizer.Factor] but stops when ctx is done.
// In that case it returns the factors found so far together with ctx.Err().
func (f *Factorizer) FactorContext(ctx context.Context, n *big.Int) (*Factorization, error) {
	res := newFactorization()
	m := new(bint)
	m.setBint((*bint)(n))
	if m.sign() < 0 {
		res.add(newBint(-1), 1)
		(*big.Int)(m).Neg((*big.Int)(m))
	}
	if m.sign() == 0 || m.cmp(bone) == 0 {
		return res, nil
	}
	stack := []rhoTask{{n: m, a: 1, budget: f.Budget}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		next, err := f.rho(ctx, res, task)
		if err != nil {
			return res, fmt.Errorf("factoring %v: %w", n, err)
		}
		stack = append(stack, next...)
	}
	return res, nil
}

// rhoTask is a composite awaiting factorization with the polynomial x² + a.
type rhoTask struct {
	n       *bint
	a       int64
	budget  int
	divided bool
}

// rho records the prime factors of task.n it finds in res.
// Composite factors it splits off are returned as new tasks with the
// polynomial constant incremented.
func (f *Factorizer) rho(ctx context.Context, res *Factorization, task rhoTask) ([]rhoTask, error) {
	var next []rhoTask
	n, a := task.n, task.a
	x, z, y := newBint(2), newBint(2), newBint(2)
	p := newBint(1)
	t := new(bint)
	k, l := 1, 1
	steps := 0

outer:
	for n.cmp(bone) != 0 {
		for {
			x.sqrAddMod(x, n, a)
			t.sub(z, x)
			p.mulMod(p, t, n)
			steps++
			if k%gcdInterval == 1 {
				if err := ctx.Err(); err != nil {
					return next, err
				}
				if task.budget > 0 && steps > task.budget {
					return f.fallback(ctx, res, task, n, steps, next)
				}
				t.gcd(p, n)
				if t.cmp(bone) != 0 {
					// Replay the walk from the last checkpoint to isolate
					// the factor.
					for {
						y.sqrAddMod(y, n, a)
						t.sub(z, y)
						t.gcd(t, n)
						if t.cmp(bone) != 0 {
							break
						}
					}
					n.quo(n, t)
					if !t.isProbablyPrime(primalityRounds) {
						c := new(bint)
						c.setBint(t)
						next = append(next, rhoTask{n: c, a: a + 1, budget: f.Budget})
						f.logger().Debug("retrying composite factor",
							zap.Stringer("factor", c.bigInt()),
							zap.Int64("constant", a+1),
						)
					} else {
						res.add(t, 1)
					}
					if n.isProbablyPrime(primalityRounds) {
						res.add(n, 1)
						return next, nil
					}
					x.mod(x, n)
					z.mod(z, n)
					y.mod(y, n)
					continue outer
				}
				y.setBint(x)
			}
			k--
			if k == 0 {
				break
			}
		}
		z.setBint(x)
		k = l
		l *= 2
		for i := 0; i < k; i++ {
			x.sqrAddMod(x, n, a)
			steps++
			if i%gcdInterval == 0 {
				if err := ctx.Err(); err != nil {
					return next, err
				}
				if task.budget > 0 && steps > task.budget {
					return f.fallback(ctx, res, task, n, steps, next)
				}
			}
		}
		y.setBint(x)
	}
	return next, nil
}

// TrialLimit bounds the trial division performed when a [Factorizer]
// exhausts its budget.
const TrialLimit = 1 << 16

// fallback is called when the rho budget of task is exhausted with n left
// to factor. It strips small primes from n and schedules the cofactor for
// another rho attempt.
func (f *Factorizer) fallback(ctx context.Context, res *Factorization, task rhoTask, n *bint, steps int, next []rhoTask) ([]rhoTask, error) {
	f.logger().Debug("rho budget exhausted",
		zap.Stringer("n", n.bigInt()),
		zap.Int("steps", steps),
		zap.Bool("divided", task.divided),
	)
	rest := n
	if !task.divided {
		var err error
		rest, err = trialDivide(ctx, res, n, TrialLimit)
		if err != nil {
			return next, err
		}
	}
	if rest.cmp(bone) == 0 {
		return next, nil
	}
	return append(next, rhoTask{
		n:       rest,
		a:       task.a + 1,
		budget:  2 * task.budget,
		divided: true,
	}), nil
}

// trialDivide records in res the prime factors of n >= 1 below limit and
// returns the cofactor, which is 1 when n has been factored completely.
// Cofactors that fit in 32 bits are always factored completely.
func trialDivide(ctx context.Context, res *Factorization, n *bint, limit int64) (*bint, error) {
	m := new(big.Int).Set(n.bigInt())
	if (*bint)(m).isProbablyPrime(primalityRounds) {
		res.add((*bint)(m), 1)
		return newBint(1), nil
	}
	d := big.NewInt(2)
	q, r := new(big.Int), new(big.Int)
	sq := new(big.Int)
	for i := 0; d.Int64() < limit; i++ {
		if (*bint)(m).isUint32() {
			factorUint32(res, uint32(m.Uint64()))
			return newBint(1), nil
		}
		if sq.Mul(d, d).Cmp(m) > 0 {
			// m has no factor below its square root
			res.add((*bint)(m), 1)
			return newBint(1), nil
		}
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return (*bint)(m), err
			}
		}
		var mult int64
		for {
			q.QuoRem(m, d, r)
			if r.Sign() != 0 {
				break
			}
			m.Set(q)
			mult++
		}
		if mult > 0 {
			res.add((*bint)(d), mult)
			if (*bint)(m).isProbablyPrime(primalityRounds) {
				res.add((*bint)(m), 1)
				return newBint(1), nil
			}
		}
		if d.Cmp(bigTwo) == 0 {
			d.SetInt64(3)
		} else {
			d.Add(d, bigTwo)
		}
	}
	return (*bint)(m), nil
}

var bigTwo = big.NewInt(2)

// factorUint32 records the prime factors of n in res.
func factorUint32(res *Factorization, n uint32) {
	for _, term := range mathutil.FactorInt(n) {
		if term.Prime < 2 {
			continue
		}
		res.add(newBint(int64(term.Prime)), int64(term.Power))
	}
}
