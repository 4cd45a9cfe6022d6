package main

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"

	"github.com/ALTree/bigfloat"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kspalaiologos/scimath"
)

// integrands are the functions known to the integrate command.
var integrands = map[string]scimath.Func{
	"one": func(c scimath.Context, x *big.Float) (*big.Float, error) {
		return c.Float().SetInt64(1), nil
	},
	"exp": func(c scimath.Context, x *big.Float) (*big.Float, error) {
		return scimath.Exp(c.Prec, x), nil
	},
	"gauss": func(c scimath.Context, x *big.Float) (*big.Float, error) {
		// e^(-x²)
		y := new(big.Float).SetPrec(c.Prec).Mul(x, x)
		return scimath.Exp(c.Prec, y.Neg(y)), nil
	},
	"cauchy": func(c scimath.Context, x *big.Float) (*big.Float, error) {
		// 1/(1+x²)
		y := new(big.Float).SetPrec(c.Prec).Mul(x, x)
		y.Add(y, big.NewFloat(1))
		return y.Quo(big.NewFloat(1), y), nil
	},
	"sqrt": func(c scimath.Context, x *big.Float) (*big.Float, error) {
		if x.Sign() < 0 {
			return nil, fmt.Errorf("sqrt(%v): %w", x, scimath.ErrNaN)
		}
		if x.Sign() == 0 {
			return c.Float(), nil
		}
		return new(big.Float).SetPrec(c.Prec).Sqrt(x), nil
	},
	"log": func(c scimath.Context, x *big.Float) (*big.Float, error) {
		if x.Sign() <= 0 {
			return nil, fmt.Errorf("log(%v): %w", x, scimath.ErrNaN)
		}
		if x.IsInf() {
			return c.Float().SetInf(false), nil
		}
		return bigfloat.Log(new(big.Float).SetPrec(c.Prec).Set(x)), nil
	},
}

func integrandNames() string {
	names := make([]string, 0, len(integrands))
	for name := range integrands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func newIntegrateCmd(a *app) *cobra.Command {
	var rule string
	cmd := &cobra.Command{
		Use:   "integrate FUNC A B [C...]",
		Short: "Integrate a built-in function",
		Long: `Integrates FUNC over [A, B], then [B, C] and so on, and prints the sum.

Bounds may be inf or -inf. Known functions: ` + integrandNames() + ".",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIntegrate(cmd.OutOrStdout(), rule, args[0], args[1:])
		},
	}
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "quadrature rule: tanh-sinh (ts) or gauss-legendre (gl)")
	return cmd
}

// newIntegrator returns an integrator configured from the app settings.
func (a *app) newIntegrator(rule scimath.Rule) (*scimath.Integrator, error) {
	return scimath.NewIntegrator(rule,
		scimath.WithMaxDegree(a.cfg.Quadrature.MaxDegree),
		scimath.WithCacheSize(a.cfg.Quadrature.CacheSize),
		scimath.WithLogger(a.logger),
	)
}

// integrand returns the built-in function called name.
func integrand(name string) (scimath.Func, error) {
	f, ok := integrands[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown function %q, want one of %v", name, integrandNames())
	}
	return f, nil
}

func (a *app) runIntegrate(w io.Writer, ruleName, fname string, bounds []string) error {
	f, err := integrand(fname)
	if err != nil {
		return err
	}
	rule, err := a.rule(ruleName)
	if err != nil {
		return err
	}
	points := make([]*big.Float, len(bounds))
	for i, s := range bounds {
		if points[i], err = a.parseFloat(s); err != nil {
			return err
		}
	}

	in, err := a.newIntegrator(rule)
	if err != nil {
		return err
	}
	defer in.Close()

	res, err := in.Integrate(a.ctx, f, points...)
	if err != nil {
		return err
	}
	a.logger.Info("integrated",
		zap.String("function", fname),
		zap.Stringer("rule", rule),
		zap.Int("degree", res.Degree),
		zap.String("error", res.Error.Text('g', 5)),
	)
	fmt.Fprintln(w, a.format(res.Value))
	return nil
}
