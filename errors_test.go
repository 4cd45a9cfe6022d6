package scimath

import (
	"errors"
	"math/big"
	"testing"
)

func TestDomainError(t *testing.T) {
	tests := []struct {
		err  *DomainError
		want string
	}{
		{newDomainError("Op", "", nil), "Op: argument out of domain"},
		{newDomainError("Op", "x < 0", nil), "Op: argument out of domain: x < 0"},
		{newDomainError("Op", "[1, 2]", ErrInvalidInterval), "Op: argument out of domain: [1, 2] (caused by: invalid integration interval)"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if !errors.Is(tt.err, ErrDomain) {
			t.Errorf("%v does not match ErrDomain", tt.err)
		}
		if tt.err.Cause != nil && !errors.Is(tt.err, tt.err.Cause) {
			t.Errorf("%v does not match its cause", tt.err)
		}
	}
}

func TestConvergenceError(t *testing.T) {
	var err error = &ConvergenceError{Op: "LambertW", Iterations: 100}
	if got, want := err.Error(), "LambertW: iteration did not converge after 100 iterations"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrConvergence) {
		t.Errorf("%v does not match ErrConvergence", err)
	}
	var ce *ConvergenceError
	if !errors.As(err, &ce) || ce.Iterations != 100 {
		t.Errorf("errors.As(%v) = %v", err, ce)
	}
}

func TestCatchNaN(t *testing.T) {
	t.Run("nan", func(t *testing.T) {
		f := func() (err error) {
			defer catchNaN(&err)
			inf := new(big.Float).SetInf(false)
			inf.Sub(inf, inf)
			return nil
		}
		if err := f(); !errors.Is(err, ErrNaN) {
			t.Errorf("catchNaN set %v, want ErrNaN", err)
		}
	})

	t.Run("other", func(t *testing.T) {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		func() (err error) {
			defer catchNaN(&err)
			panic("boom")
		}()
	})
}
