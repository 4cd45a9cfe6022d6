package main

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspalaiologos/scimath"
)

// execute runs the command tree with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestFactorCmd(t *testing.T) {
	out, err := execute(t, "factor", "--", "720", "-720", "0", "0x10", "1000003")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"720: 2^4 * 3^2 * 5",
		"-720: -1 * 2^4 * 3^2 * 5",
		"0: 1",
		"16: 2^4",
		"1000003: 1000003",
	}, lines(out))

	t.Run("budget", func(t *testing.T) {
		t.Setenv("SCIMATH_FACTOR_BUDGET", "10")
		t.Setenv("SCIMATH_FACTOR_WORKERS", "1")
		out, err := execute(t, "factor", "18446744073709551617")
		require.NoError(t, err)
		assert.Equal(t, "18446744073709551617: 274177 * 67280421310721\n", out)
	})

	t.Run("error", func(t *testing.T) {
		_, err := execute(t, "factor", "12", "abc")
		assert.ErrorContains(t, err, `parsing "abc"`)

		_, err = execute(t, "factor")
		assert.Error(t, err)
	})
}

func TestConstCmd(t *testing.T) {
	out, err := execute(t, "const", "-p", "64", "pi", "e", "euler")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "3.14159265358979323"), got[0])
	assert.True(t, strings.HasPrefix(got[1], "2.71828182845904523"), got[1])
	assert.True(t, strings.HasPrefix(got[2], "0.57721566490153286"), got[2])

	tests := []struct {
		rounding string
		want     string
	}{
		{"nearest", "3.1416\n"},
		{"down", "3.1415\n"},
		{"zero", "3.1415\n"},
		{"up", "3.1416\n"},
	}
	for _, tt := range tests {
		out, err := execute(t, "const", "pi", "--prec", "16", "--rounding", tt.rounding)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out, tt.rounding)
	}

	_, err = execute(t, "const", "tau")
	assert.ErrorContains(t, err, "unknown constant")
}

func TestLambertWCmd(t *testing.T) {
	out, err := execute(t, "lambertw", "-p", "64", "1", "10")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "0.56714329040978387"), got[0])
	assert.True(t, strings.HasPrefix(got[1], "1.74552800274069938"), got[1])

	out, err = execute(t, "lambertw", "-p", "64", "--branch=-1", "--", "-0.3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "-1.78133702342162761"), out)

	_, err = execute(t, "lambertw", "--branch=1", "2")
	assert.ErrorIs(t, err, scimath.ErrNaN)

	_, err = execute(t, "lambertw", "two")
	assert.Error(t, err)
}

func TestNodesCmd(t *testing.T) {
	out, err := execute(t, "nodes", "--rule", "gl", "--degree", "1", "-p", "32")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "0.77459666"), got[0])
	assert.True(t, strings.HasPrefix(got[1], "-0.77459666"), got[1])
	assert.True(t, strings.HasPrefix(got[2], "0 0.88888888"), got[2])

	out, err = execute(t, "nodes", "-r", "gl", "-p", "53", "--a", "2", "--b", "6")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "5.5491933384829"), out)

	out, err = execute(t, "nodes", "-r", "ts", "-d", "2")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Zero(t, len(lines(out))%2)

	t.Run("error", func(t *testing.T) {
		_, err := execute(t, "nodes", "--a", "1")
		assert.Error(t, err)

		_, err = execute(t, "nodes", "--degree", "0")
		assert.ErrorIs(t, err, scimath.ErrDomain)

		_, err = execute(t, "nodes", "--a", "inf", "--b", "1")
		assert.ErrorIs(t, err, scimath.ErrInvalidInterval)

		_, err = execute(t, "nodes", "--rule", "simpson")
		assert.Error(t, err)
	})
}

// assertNear checks that the printed number out is within tol of want.
func assertNear(t *testing.T, out, want string, tol float64) {
	t.Helper()
	got, _, err := big.ParseFloat(strings.TrimSpace(out), 10, 128, big.ToNearestEven)
	require.NoError(t, err)
	w, _, err := big.ParseFloat(want, 10, 128, big.ToNearestEven)
	require.NoError(t, err)
	d := new(big.Float).Sub(got, w)
	f, _ := d.Abs(d).Float64()
	assert.LessOrEqual(t, f, tol, "got %v, want %v", out, want)
}

func TestIntegrateCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		tol  float64
	}{
		{"exp gl", []string{"-r", "gl", "--", "exp", "0", "1"}, "1.71828182845904523536", 1e-17},
		{"exp ts", []string{"-r", "ts", "--", "exp", "0", "1"}, "1.71828182845904523536", 1e-17},
		{"gauss", []string{"--", "gauss", "-inf", "inf"}, "1.77245385090551602730", 1e-15},
		{"cauchy", []string{"--", "cauchy", "0", "inf"}, "1.57079632679489661923", 1e-15},
		{"exp lower half-line", []string{"--", "exp", "-inf", "0"}, "1", 1e-17},
		{"log", []string{"--", "log", "0", "1"}, "-1", 1e-15},
		{"sqrt", []string{"--", "sqrt", "0", "1"}, "0.66666666666666666667", 1e-15},
		{"one", []string{"-r", "gl", "--", "one", "-1", "0.5", "2"}, "3", 1e-17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"integrate", "-p", "64"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assertNear(t, out, tt.want, tt.tol)
		})
	}

	t.Run("error", func(t *testing.T) {
		_, err := execute(t, "integrate", "nope", "0", "1")
		assert.ErrorContains(t, err, "unknown function")

		_, err = execute(t, "integrate", "--", "sqrt", "-1", "1")
		assert.ErrorIs(t, err, scimath.ErrNaN)

		_, err = execute(t, "integrate", "exp", "0")
		assert.Error(t, err)

		_, err = execute(t, "integrate", "exp", "0", "x")
		assert.Error(t, err)
	})
}

func TestDiffCmd(t *testing.T) {
	out, err := execute(t, "diff", "-p", "64", "exp", "1", "0")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "2.7182818284590452"), got[0])
	assertNear(t, got[1], "1", 1e-18)

	out, err = execute(t, "diff", "-p", "64", "-n", "2", "log", "2")
	require.NoError(t, err)
	assertNear(t, out, "-0.25", 1e-18)

	out, err = execute(t, "diff", "-p", "64", "--direction", "right", "--extra", "20", "sqrt", "4")
	require.NoError(t, err)
	assertNear(t, out, "0.25", 1e-17)

	out, err = execute(t, "diff", "-p", "64", "-n", "0", "--singular", "--relative", "one", "5")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	t.Run("error", func(t *testing.T) {
		_, err := execute(t, "diff", "--direction", "up", "exp", "1")
		assert.ErrorIs(t, err, scimath.ErrDomain)

		_, err = execute(t, "diff", "-n", "-1", "exp", "1")
		assert.ErrorIs(t, err, scimath.ErrDomain)

		_, err = execute(t, "diff", "nope", "1")
		assert.ErrorContains(t, err, "unknown function")

		_, err = execute(t, "diff", "exp")
		assert.Error(t, err)
	})
}

func TestSumCmd(t *testing.T) {
	out, err := execute(t, "sum", "-p", "64", "--", "exp", "-inf", "0")
	require.NoError(t, err)
	assertNear(t, out, "1.58197670686932642438500200510901155854686930107539613626678705964804381739166974", 1e-16)

	out, err = execute(t, "sum", "-p", "64", "-r", "gl", "one", "1", "10")
	require.NoError(t, err)
	assertNear(t, out, "10", 1e-16)

	t.Run("error", func(t *testing.T) {
		_, err := execute(t, "sum", "one", "1", "2.5")
		assert.ErrorIs(t, err, scimath.ErrDomain)

		_, err = execute(t, "sum", "one", "inf", "2")
		assert.ErrorIs(t, err, scimath.ErrInvalidInterval)

		_, err = execute(t, "sum", "one", "1")
		assert.Error(t, err)
	})
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scimath.yaml")
	require.NoError(t, os.WriteFile(path, []byte("precision: 16\nrounding: down\n"), 0o600))

	out, err := execute(t, "const", "pi", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "3.1415\n", out)

	// Flags override the file.
	out, err = execute(t, "const", "pi", "--config", path, "--rounding", "up")
	require.NoError(t, err)
	assert.Equal(t, "3.1416\n", out)

	t.Setenv("SCIMATH_PRECISION", "16")
	out, err = execute(t, "const", "pi")
	require.NoError(t, err)
	assert.Equal(t, "3.1416\n", out)

	t.Run("error", func(t *testing.T) {
		_, err := execute(t, "const", "pi", "--config", filepath.Join(dir, "missing.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)

		_, err = execute(t, "const", "pi", "--rounding", "sideways")
		assert.Error(t, err)

		_, err = execute(t, "const", "pi", "--prec", "0")
		assert.Error(t, err)
	})
}

func TestDigits(t *testing.T) {
	tests := []struct {
		prec uint
		want int
	}{
		{1, 1},
		{16, 5},
		{53, 16},
		{64, 20},
		{128, 39},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, digits(tt.prec), "digits(%v)", tt.prec)
	}
}
