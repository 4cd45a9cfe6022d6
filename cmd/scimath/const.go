package main

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kspalaiologos/scimath"
)

// constants maps names accepted by the const command to their generators.
var constants = map[string]func(prec uint) *big.Float{
	"pi":    scimath.Pi,
	"e":     scimath.E,
	"euler": scimath.EulerGamma,
	"gamma": scimath.EulerGamma,
}

func newConstCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "const NAME...",
		Short:     "Print mathematical constants",
		Long:      `Prints pi, e or Euler's constant (euler, gamma) at the working precision.`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"pi", "e", "euler", "gamma"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConst(cmd.OutOrStdout(), args)
		},
	}
}

func (a *app) runConst(w io.Writer, names []string) error {
	for _, name := range names {
		gen, ok := constants[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown constant %q", name)
		}
		// Directed rounding needs a value wider than the target.
		x := a.ctx.Round(gen(a.ctx.Prec + 32))
		fmt.Fprintln(w, a.format(x))
	}
	return nil
}
