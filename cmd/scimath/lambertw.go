package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kspalaiologos/scimath"
)

func newLambertWCmd(a *app) *cobra.Command {
	var branch int
	cmd := &cobra.Command{
		Use:   "lambertw Z...",
		Short: "Evaluate the Lambert W function",
		Long: `Prints W_k(z), the solution w of w·e^w = z on branch k, for every argument.

Only the real branches 0 and -1 are available. Put negative arguments after
"--", e.g. scimath lambertw --branch=-1 -- -0.3.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLambertW(cmd.OutOrStdout(), args, branch)
		},
	}
	cmd.Flags().IntVarP(&branch, "branch", "k", 0, "branch index, 0 or -1")
	return cmd
}

func (a *app) runLambertW(w io.Writer, args []string, branch int) error {
	for _, s := range args {
		z, err := a.parseFloat(s)
		if err != nil {
			return err
		}
		res, err := scimath.LambertW(a.ctx, z, branch)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, a.format(res))
	}
	return nil
}
