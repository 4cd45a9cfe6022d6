package scimath

import (
	"math/big"
	"testing"

	"golang.org/x/sync/errgroup"
)

const (
	piDigits    = "3.14159265358979323846264338327950288419716939937510582097494459230781640628620899"
	eDigits     = "2.71828182845904523536028747135266249775724709369995957496696762772407663035354759"
	eulerDigits = "0.57721566490153286060651209008240243104215933593992359880576723488486772677766467"
)

func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		get  func(*Constants, uint) *big.Float
		want string
	}{
		{"pi", (*Constants).Pi, piDigits},
		{"e", (*Constants).E, eDigits},
		{"euler", (*Constants).Euler, eulerDigits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConstants(0)
			want := mustParseFloat(300, tt.want)
			for _, prec := range []uint{1, 2, 24, 53, 64, 100, 128, 200, 256} {
				got := tt.get(c, prec)
				if got.Prec() != prec {
					t.Errorf("%v(%v) has precision %v", tt.name, prec, got.Prec())
				}
				if !closeTo(got, want, int(prec)-1) {
					t.Errorf("%v(%v) = %v, want %v", tt.name, prec, got.Text('g', 40), tt.want)
				}
			}
		})
	}
}

func TestConstants_Cache(t *testing.T) {
	t.Run("reuse", func(t *testing.T) {
		c := NewConstants(4)
		a := c.Pi(128)
		if c.Len() != 1 {
			t.Errorf("Len() = %v, want 1", c.Len())
		}
		b := c.Pi(128)
		if a == b {
			t.Errorf("Pi returned a shared value")
		}
		if a.Cmp(b) != 0 {
			t.Errorf("Pi(128) = %v, then %v", a, b)
		}
		a.SetInt64(3)
		if got := c.Pi(128); !closeTo(got, mustParseFloat(200, piDigits), 127) {
			t.Errorf("modifying a returned value changed the cache: %v", got)
		}
	})

	t.Run("lower precision", func(t *testing.T) {
		c := NewConstants(4)
		c.E(256)
		got := c.E(64)
		if c.Len() != 1 {
			t.Errorf("Len() = %v, want 1", c.Len())
		}
		want := mustParseFloat(64, eDigits)
		if got.Prec() != 64 || !closeTo(got, want, 63) {
			t.Errorf("E(64) = %v, want %v", got, want)
		}
	})

	t.Run("smallest higher precision", func(t *testing.T) {
		c := NewConstants(4)
		c.store(constKey{constPi, 200}, mustParseFloat(200, piDigits))
		c.store(constKey{constPi, 100}, fromInt(100, 3))
		for i := 0; i < 10; i++ {
			if got := c.Pi(64); got.Cmp(fromInt(64, 3)) != 0 {
				t.Fatalf("Pi(64) = %v, want the value cached at 100 bits", got)
			}
		}
	})

	t.Run("ambiguous rounding", func(t *testing.T) {
		tests := []struct {
			v    string
			prec uint
			want string
		}{
			{"1.0625", 4, ""},
			{"1.25", 4, "1.25"},
			{"1.064453125", 4, "1.125"},
			{"1.060546875", 4, "1"},
		}
		for _, tt := range tests {
			c := NewConstants(4)
			c.store(constKey{constE, 10}, mustParseFloat(10, tt.v))
			got := c.lookup(constE, tt.prec)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("lookup(%v) of %v = %v, want nil", tt.prec, tt.v, got)
			case tt.want != "" && (got == nil || got.Cmp(mustParseFloat(tt.prec, tt.want)) != 0):
				t.Errorf("lookup(%v) of %v = %v, want %v", tt.prec, tt.v, got, tt.want)
			}
		}
	})

	t.Run("eviction", func(t *testing.T) {
		c := NewConstants(2)
		c.Pi(64)
		c.E(64)
		c.Euler(64)
		if c.Len() != 2 {
			t.Errorf("Len() = %v, want 2", c.Len())
		}
		c.Pi(100)
		if c.Len() != 2 {
			t.Errorf("Len() = %v, want 2", c.Len())
		}
	})

	t.Run("clear", func(t *testing.T) {
		c := NewConstants(4)
		c.Pi(64)
		c.Euler(64)
		c.Clear()
		if c.Len() != 0 {
			t.Errorf("Len() = %v after Clear, want 0", c.Len())
		}
		c.Clear()
		if got := c.Pi(64); !closeTo(got, mustParseFloat(64, piDigits), 63) {
			t.Errorf("Pi(64) = %v after Clear", got)
		}
	})
}

func TestConstants_Concurrent(t *testing.T) {
	c := NewConstants(8)
	want := mustParseFloat(400, piDigits)
	var g errgroup.Group
	results := make([]*big.Float, 32)
	for i := range results {
		i := i
		g.Go(func() error {
			results[i] = c.Pi(256)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for i, got := range results {
		if !closeTo(got, want, 255) {
			t.Errorf("result %v = %v", i, got)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %v, want 1", c.Len())
	}
}

func TestClearCaches(t *testing.T) {
	Pi(64)
	ClearCaches()
	if DefaultConstants.Len() != 0 {
		t.Errorf("DefaultConstants.Len() = %v after ClearCaches, want 0", DefaultConstants.Len())
	}
	ClearCaches()
	if got := EulerGamma(64); !closeTo(got, mustParseFloat(64, eulerDigits), 63) {
		t.Errorf("EulerGamma(64) = %v", got)
	}
}
