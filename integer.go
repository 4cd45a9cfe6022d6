package scimath

import (
	"math/big"
	"sync"

	"github.com/remyoudompheng/bigfft"
)

// bint (Big INTeger) is a wrapper around big.Int.
type bint big.Int

var bone = newBint(1)

func newBint(v int64) *bint {
	return (*bint)(big.NewInt(v))
}

// bigInt converts z to *big.Int without copying.
func (z *bint) bigInt() *big.Int {
	return (*big.Int)(z)
}

func (z *bint) sign() int {
	return (*big.Int)(z).Sign()
}

func (z *bint) cmp(x *bint) int {
	return (*big.Int)(z).Cmp((*big.Int)(x))
}

func (z *bint) string() string {
	return (*big.Int)(z).String()
}

func (z *bint) setBint(x *bint) {
	(*big.Int)(z).Set((*big.Int)(x))
}

func (z *bint) setInt64(v int64) {
	(*big.Int)(z).SetInt64(v)
}

// add calculates z = x + y.
func (z *bint) add(x, y *bint) {
	(*big.Int)(z).Add((*big.Int)(x), (*big.Int)(y))
}

// sub calculates z = x - y.
func (z *bint) sub(x, y *bint) {
	(*big.Int)(z).Sub((*big.Int)(x), (*big.Int)(y))
}

// mul calculates z = x * y.
// Operands above the FFT threshold are multiplied with bigfft.
func (z *bint) mul(x, y *bint) {
	(*big.Int)(z).Set(bigfft.Mul((*big.Int)(x), (*big.Int)(y)))
}

// mod calculates z = x mod y, where 0 <= z < |y|.
func (z *bint) mod(x, y *bint) {
	(*big.Int)(z).Mod((*big.Int)(x), (*big.Int)(y))
}

// quo calculates z = ⌊x / y⌋.
func (z *bint) quo(x, y *bint) {
	// Passing r to prevent heap allocations.
	r := getBint()
	defer putBint(r)
	(*big.Int)(z).QuoRem((*big.Int)(x), (*big.Int)(y), (*big.Int)(r))
}

// gcd calculates z = gcd(x, y).
// gcd(0, y) = |y| and gcd(x, 0) = |x|.
func (z *bint) gcd(x, y *bint) {
	(*big.Int)(z).GCD(nil, nil, (*big.Int)(x), (*big.Int)(y))
}

// sqrAddMod calculates z = (x² mod n) + a.
// The result is not reduced after adding a.
func (z *bint) sqrAddMod(x, n *bint, a int64) {
	s := getBint()
	defer putBint(s)
	s.mul(x, x)
	z.mod(s, n)
	s.setInt64(a)
	z.add(z, s)
}

// mulMod calculates z = x * y mod n.
func (z *bint) mulMod(x, y, n *bint) {
	s := getBint()
	defer putBint(s)
	s.mul(x, y)
	z.mod(s, n)
}

// isProbablyPrime runs Miller-Rabin with the given number of rounds
// followed by a Baillie-PSW test.
func (z *bint) isProbablyPrime(rounds int) bool {
	return (*big.Int)(z).ProbablyPrime(rounds)
}

// isUint32 reports whether 0 <= z < 2^32.
func (z *bint) isUint32() bool {
	return z.sign() >= 0 && (*big.Int)(z).BitLen() <= 32
}

// bpool is a cache of reusable *big.Int instances.
var bpool = sync.Pool{
	New: func() any {
		return (*bint)(new(big.Int))
	},
}

// getBint obtains a *big.Int from the pool.
func getBint() *bint {
	return bpool.Get().(*bint)
}

// putBint returns the *big.Int into the pool.
func putBint(b *bint) {
	bpool.Put(b)
}
