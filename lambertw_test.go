package scimath

import (
	"errors"
	"math/big"
	"testing"
)

func TestLambertW(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tests := []struct {
			z    string
			k    int
			prec uint
			want string
		}{
			{"1", 0, 64, "0.56714329040978387299996866221035554975381578718651250813513107922304579308668458"},
			{"1", 0, 200, "0.56714329040978387299996866221035554975381578718651250813513107922304579308668458"},
			{"1.23", 0, 130, "0.64520356959320237759035605255334853830173300262666491211520379790005222284742680"},
			{"-0.3", 0, 100, "-0.48940222718021496903623125199629336892341000601635903451146596797368140838162062"},
			{"-0.3", -1, 100, "-1.7813370234216276119741702815127452608215583564544614085714192924262966825401637"},
			{"10", 0, 128, "1.7455280027406993830743012648753899115352881290809413313222060485555572599415517"},
			{"1e6", 0, 128, "11.383358086140052622000156781585004289033774706018865121432386106268986107680189"},
			{"0.001", 0, 128, "0.00099900149733853088995782787410778559957065467928884349076737386495254551444454040"},
		}
		for _, tt := range tests {
			c := NewContext(tt.prec)
			z := mustParseFloat(tt.prec+64, tt.z)
			got, err := LambertW(c, z, tt.k)
			if err != nil {
				t.Errorf("LambertW(%v, %v) failed: %v", tt.z, tt.k, err)
				continue
			}
			if got.Prec() != tt.prec {
				t.Errorf("LambertW(%v, %v) has precision %v, want %v", tt.z, tt.k, got.Prec(), tt.prec)
			}
			want := mustParseFloat(tt.prec+64, tt.want)
			if !closeTo(got, want, int(tt.prec)-4) {
				t.Errorf("LambertW(%v, %v) = %v, want %v", tt.z, tt.k, got.Text('g', 40), tt.want)
			}
		}
	})

	t.Run("e", func(t *testing.T) {
		const prec = 128
		got := MustLambertW(NewContext(prec), E(prec+64), 0)
		if !closeTo(got, big.NewFloat(1), prec-4) {
			t.Errorf("LambertW(e, 0) = %v, want 1", got)
		}
	})

	t.Run("special", func(t *testing.T) {
		c := NewContext(64)
		w, err := LambertW(c, new(big.Float), 0)
		if err != nil || w.Sign() != 0 {
			t.Errorf("LambertW(0, 0) = %v, %v, want 0", w, err)
		}
		w, err = LambertW(c, new(big.Float), -1)
		if err != nil || !w.IsInf() || w.Sign() > 0 {
			t.Errorf("LambertW(0, -1) = %v, %v, want -Inf", w, err)
		}
		w, err = LambertW(c, inf(false), 0)
		if err != nil || !w.IsInf() || w.Sign() < 0 {
			t.Errorf("LambertW(+Inf, 0) = %v, %v, want +Inf", w, err)
		}
	})

	t.Run("error", func(t *testing.T) {
		tests := []struct {
			z *big.Float
			k int
		}{
			{big.NewFloat(1), 1},
			{big.NewFloat(1), -2},
			{big.NewFloat(-1), 0},
			{big.NewFloat(-1), -1},
			{big.NewFloat(0.5), -1},
			{inf(false), -1},
			{inf(true), 0},
			{inf(false), 3},
		}
		for _, tt := range tests {
			_, err := LambertW(NewContext(64), tt.z, tt.k)
			if !errors.Is(err, ErrNaN) {
				t.Errorf("LambertW(%v, %v) = %v, want ErrNaN", tt.z, tt.k, err)
			}
		}
		_, err := LambertW(Context{}, big.NewFloat(1), 0)
		if !errors.Is(err, ErrDomain) {
			t.Errorf("LambertW with zero precision = %v, want ErrDomain", err)
		}
	})
}

// checkInverse verifies w·e^w = z to the given number of bits.
func checkInverse(t *testing.T, z, w *big.Float, bits int) {
	t.Helper()
	prec := w.Prec() + 32
	got := fexp(prec, w)
	got.Mul(got, w)
	if !closeTo(got, z, bits) {
		t.Errorf("w·e^w = %v for w = %v, want %v", got.Text('g', 30), w.Text('g', 30), z.Text('g', 30))
	}
}

func TestLambertW_Inverse(t *testing.T) {
	const prec = 160
	c := NewContext(prec)
	for _, s := range []string{"1e-30", "-1e-30", "0.001", "0.5", "2", "2.5", "3", "100", "1e6", "1e100", "-0.1", "-0.25", "-0.33"} {
		z := mustParseFloat(prec, s)
		w := MustLambertW(c, z, 0)
		checkInverse(t, z, w, prec-16)
	}
	for _, s := range []string{"-1e-30", "-0.001", "-0.1", "-0.25", "-0.33"} {
		z := mustParseFloat(prec, s)
		w := MustLambertW(c, z, -1)
		if w.Cmp(big.NewFloat(-1)) >= 0 {
			t.Errorf("LambertW(%v, -1) = %v, want below -1", s, w)
		}
		checkInverse(t, z, w, prec-16)
	}
}

func TestLambertW_BranchPoint(t *testing.T) {
	const prec = 128
	c := NewContext(prec)
	for _, offset := range []string{"1e-3", "1e-10", "1e-30", "1e-60"} {
		// z = -1/e + offset
		z := newFloat(prec+200).Quo(big.NewFloat(-1), E(prec+200))
		z.Add(z, mustParseFloat(prec+200, offset))

		w0, err := LambertW(c, z, 0)
		if err != nil {
			t.Errorf("LambertW(-1/e + %v, 0) failed: %v", offset, err)
			continue
		}
		w1, err := LambertW(c, z, -1)
		if err != nil {
			t.Errorf("LambertW(-1/e + %v, -1) failed: %v", offset, err)
			continue
		}
		if w0.Cmp(big.NewFloat(-1)) <= 0 || w1.Cmp(big.NewFloat(-1)) >= 0 {
			t.Errorf("branches at -1/e + %v are not separated by -1: %v, %v", offset, w0, w1)
		}
	}

	t.Run("known", func(t *testing.T) {
		// -1/e + 1e-10
		z := newFloat(400).Quo(big.NewFloat(-1), E(400))
		z.Add(z, mustParseFloat(400, "1e-10"))
		tests := []struct {
			k    int
			want string
		}{
			{0, "-0.99997668374140088071432342664074343459650781143366006949399759603038707213906912"},
			{-1, "-1.0000233166210366964606202954532778564558079535525460001712608168651062113487556"},
		}
		for _, tt := range tests {
			got := MustLambertW(NewContext(100), z, tt.k)
			if !closeTo(got, mustParseFloat(200, tt.want), 90) {
				t.Errorf("LambertW(-1/e + 1e-10, %v) = %v, want %v", tt.k, got.Text('g', 30), tt.want)
			}
		}
	})

	t.Run("exact", func(t *testing.T) {
		// z rounded at the working precision lands on -1/e
		c := NewContext(64)
		z := newFloat(c.Prec+30).Quo(big.NewFloat(-1), E(c.Prec+30))
		for _, k := range []int{0, -1} {
			w, err := LambertW(c, z, k)
			if err != nil {
				t.Errorf("LambertW(-1/e, %v) failed: %v", k, err)
				continue
			}
			if !closeTo(w, big.NewFloat(-1), 20) {
				t.Errorf("LambertW(-1/e, %v) = %v, want -1", k, w)
			}
		}
	})
}

func TestLambertW_Rounding(t *testing.T) {
	z := big.NewFloat(1)
	down := MustLambertW(Context{Prec: 32, Rounding: Down}, z, 0)
	up := MustLambertW(Context{Prec: 32, Rounding: Up}, z, 0)
	zero := MustLambertW(Context{Prec: 32, Rounding: TowardZero}, z, 0)
	if down.Cmp(up) >= 0 {
		t.Errorf("rounding down %v is not below rounding up %v", down, up)
	}
	if zero.Cmp(down) != 0 {
		t.Errorf("rounding toward zero %v differs from rounding down %v for a positive result", zero, down)
	}
	ulp := fpow2(64, -32)
	d := newFloat(64).Sub(up, down)
	if d.Cmp(ulp) > 0 {
		t.Errorf("up - down = %v, want at most one ulp", d)
	}
}

func TestHalley(t *testing.T) {
	const wp = 84
	const tol = 59
	omega := mustParseFloat(wp, "0.56714329040978387299996866221035554975381578718651250813513107922304579308668458")

	t.Run("success", func(t *testing.T) {
		w, iters, err := halley(wp, tol, fromInt(wp, 1), mustParseFloat(wp, "0.5"), halleyMaxIter)
		if err != nil {
			t.Fatalf("halley() failed: %v", err)
		}
		if iters < 1 || iters > 10 {
			t.Errorf("halley() took %v iterations", iters)
		}
		if !closeTo(w, omega, tol) {
			t.Errorf("halley() = %v, want %v", w, omega)
		}
	})

	tests := []struct {
		name    string
		seed    *big.Float
		maxIter int
	}{
		{"budget exhausted", fromInt(wp, 1_000_000), halleyMaxIter},
		{"reduced budget", mustParseFloat(wp, "0.5"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, iters, err := halley(wp, tol, fromInt(wp, 1), tt.seed, tt.maxIter)
			if !errors.Is(err, ErrConvergence) {
				t.Fatalf("halley() = %v, %v, want ErrConvergence", w, err)
			}
			var ce *ConvergenceError
			if !errors.As(err, &ce) || ce.Op != "LambertW" || ce.Iterations != tt.maxIter {
				t.Errorf("halley() error = %#v", ce)
			}
			if w != nil || iters != tt.maxIter {
				t.Errorf("halley() = %v after %v iterations, want nil after %v", w, iters, tt.maxIter)
			}
		})
	}
}

func TestLambertW_DoesNotModifyArgument(t *testing.T) {
	z := big.NewFloat(2)
	MustLambertW(NewContext(64), z, 0)
	if z.Cmp(big.NewFloat(2)) != 0 || z.Prec() != 53 {
		t.Errorf("LambertW modified its argument to %v", z)
	}
}

func TestMustLambertW(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MustLambertW did not panic")
		}
	}()
	MustLambertW(NewContext(64), big.NewFloat(-1), 0)
}
