package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSumCmd(a *app) *cobra.Command {
	var rule string
	cmd := &cobra.Command{
		Use:   "sum FUNC A B",
		Short: "Sum a built-in function over the integers",
		Long: `Prints FUNC(A) + FUNC(A+1) + ... + FUNC(B), evaluated with the
Euler-Maclaurin formula.

A may be -inf and B may be inf. Known functions: ` + integrandNames() + ".",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSum(cmd.OutOrStdout(), rule, args[0], args[1], args[2])
		},
	}
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "quadrature rule: tanh-sinh (ts) or gauss-legendre (gl)")
	return cmd
}

func (a *app) runSum(w io.Writer, ruleName, fname, lo, hi string) error {
	f, err := integrand(fname)
	if err != nil {
		return err
	}
	rule, err := a.rule(ruleName)
	if err != nil {
		return err
	}
	x, err := a.parseFloat(lo)
	if err != nil {
		return err
	}
	y, err := a.parseFloat(hi)
	if err != nil {
		return err
	}

	in, err := a.newIntegrator(rule)
	if err != nil {
		return err
	}
	defer in.Close()

	res, err := in.Sum(a.ctx, f, x, y)
	if err != nil {
		return err
	}
	a.logger.Info("summed",
		zap.String("function", fname),
		zap.Stringer("rule", rule),
		zap.String("error", res.Error.Text('g', 5)),
	)
	fmt.Fprintln(w, a.format(res.Value))
	return nil
}
