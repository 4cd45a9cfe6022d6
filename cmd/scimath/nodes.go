package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kspalaiologos/scimath"
)

type nodesOptions struct {
	rule   string
	degree int
	a, b   string
}

func newNodesCmd(a *app) *cobra.Command {
	var opts nodesOptions
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Print quadrature nodes and weights",
		Long: `Prints the abscissas and weights of a quadrature rule, one node per line.

Without --a and --b the nodes are on [-1, 1]. Either bound may be inf or -inf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNodes(cmd.OutOrStdout(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.rule, "rule", "r", "", "quadrature rule: tanh-sinh (ts) or gauss-legendre (gl)")
	flags.IntVarP(&opts.degree, "degree", "d", 1, "degree of the rule")
	flags.StringVar(&opts.a, "a", "", "lower bound of the interval")
	flags.StringVar(&opts.b, "b", "", "upper bound of the interval")
	return cmd
}

func (a *app) runNodes(w io.Writer, opts nodesOptions) error {
	rule, err := a.rule(opts.rule)
	if err != nil {
		return err
	}
	prec := a.ctx.Prec
	nodes, err := rule.Nodes(prec, opts.degree)
	if err != nil {
		return err
	}
	if (opts.a == "") != (opts.b == "") {
		return fmt.Errorf("--a and --b must be given together")
	}
	if opts.a != "" {
		lo, err := a.parseFloat(opts.a)
		if err != nil {
			return err
		}
		hi, err := a.parseFloat(opts.b)
		if err != nil {
			return err
		}
		if err := scimath.TransformNodes(prec, nodes, lo, hi); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		fmt.Fprintf(w, "%s %s\n", a.format(a.ctx.Round(n.X)), a.format(a.ctx.Round(n.W)))
	}
	return nil
}

// rule returns the rule named s, or the configured rule if s is empty.
func (a *app) rule(s string) (scimath.Rule, error) {
	if s == "" {
		return a.cfg.Rule()
	}
	return scimath.ParseRule(s)
}
