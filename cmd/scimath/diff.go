package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kspalaiologos/scimath"
)

type diffOptions struct {
	order     int
	direction string
	extra     int
	relative  bool
	singular  bool
}

func newDiffCmd(a *app) *cobra.Command {
	var opts diffOptions
	cmd := &cobra.Command{
		Use:   "diff FUNC X...",
		Short: "Differentiate a built-in function",
		Long: `Prints the n-th derivative of FUNC at every point X.

Known functions: ` + integrandNames() + ".",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd.OutOrStdout(), opts, args[0], args[1:])
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&opts.order, "order", "n", 1, "order of the derivative")
	flags.StringVar(&opts.direction, "direction", "central", "finite difference: central, left or right")
	flags.IntVar(&opts.extra, "extra", scimath.DefaultDiffPrecision, "guard bits of the step")
	flags.BoolVar(&opts.relative, "relative", false, "scale the step with the point")
	flags.BoolVar(&opts.singular, "singular", false, "do not evaluate the function at the point")
	return cmd
}

func (a *app) runDiff(w io.Writer, opts diffOptions, fname string, args []string) error {
	f, err := integrand(fname)
	if err != nil {
		return err
	}
	dir, err := scimath.ParseDirection(opts.direction)
	if err != nil {
		return err
	}
	dopts := []scimath.DiffOption{
		scimath.WithDirection(dir),
		scimath.WithExtraPrecision(opts.extra),
	}
	if opts.relative {
		dopts = append(dopts, scimath.WithRelativeStep())
	}
	if opts.singular {
		dopts = append(dopts, scimath.WithSingular())
	}
	for _, s := range args {
		x, err := a.parseFloat(s)
		if err != nil {
			return err
		}
		d, err := scimath.Differentiate(a.ctx, f, x, opts.order, dopts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, a.format(d))
	}
	return nil
}
