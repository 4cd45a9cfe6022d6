package main

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kspalaiologos/scimath"
)

func newFactorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "factor N...",
		Short: "Print the prime factorization of integers",
		Long: `Factors every argument with Pollard's rho method.

Arguments are factored concurrently by up to factor.workers goroutines, each
bounded by factor.timeout. Results are printed in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFactor(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func (a *app) runFactor(ctx context.Context, w io.Writer, args []string) error {
	nums := make([]*big.Int, len(args))
	for i, s := range args {
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return fmt.Errorf("parsing %q: invalid integer", s)
		}
		nums[i] = n
	}

	f := scimath.Factorizer{Budget: a.cfg.Factor.Budget, Logger: a.logger}
	results := make([]*scimath.Factorization, len(nums))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Factor.Workers)
	for i, n := range nums {
		i, n := i, n
		g.Go(func() error {
			ctx := ctx
			if a.cfg.Factor.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.cfg.Factor.Timeout)
				defer cancel()
			}
			res, err := f.FactorContext(ctx, n)
			if err != nil {
				return err
			}
			a.logger.Debug("factored", zap.Stringer("n", n), zap.Int("primes", res.Len()))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, n := range nums {
		fmt.Fprintf(w, "%v: %v\n", n, results[i])
	}
	return nil
}
