package main

import (
	"fmt"
	"math"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kspalaiologos/scimath"
	"github.com/kspalaiologos/scimath/internal/config"
)

// app holds the state shared by all subcommands.
type app struct {
	// Global flags
	configPath string
	prec       uint
	rounding   string
	verbose    bool

	cfg    *config.Config
	ctx    scimath.Context
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "scimath",
		Short: "Arbitrary-precision factorization, calculus and Lambert W",
		Long: `scimath is a command-line front end to the scimath library.

Real results are printed with as many significant digits as the working
precision allows. Precision, rounding, factoring limits and the quadrature
rule can be set in a TOML or YAML file, through SCIMATH_* environment
variables, or with flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
			scimath.SetLogger(nil)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (.toml, .yaml)")
	flags.UintVarP(&a.prec, "prec", "p", 0, "precision in bits (overrides the configuration)")
	flags.StringVar(&a.rounding, "rounding", "", "rounding mode: nearest, up, down or zero")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newFactorCmd(a),
		newNodesCmd(a),
		newLambertWCmd(a),
		newIntegrateCmd(a),
		newDiffCmd(a),
		newSumCmd(a),
		newConstCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("prec") {
		cfg.Precision = a.prec
	}
	if flags.Changed("rounding") {
		cfg.Rounding = a.rounding
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.ctx, err = cfg.Context()
	if err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	a.logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	scimath.SetLogger(a.logger)
	a.logger.Debug("configuration loaded",
		zap.Stringer("context", a.ctx),
		zap.String("rule", cfg.Quadrature.Rule),
		zap.Int("workers", cfg.Factor.Workers),
	)
	return nil
}

// digits returns the number of significant decimal digits carried by a
// binary precision.
func digits(prec uint) int {
	return int(math.Ceil(float64(prec) * math.Log10(2)))
}

// format renders x with the significant digits of the app precision.
func (a *app) format(x *big.Float) string {
	return x.Text('g', digits(a.ctx.Prec))
}

// parseFloat parses a decimal or hexadecimal real, including ±Inf, with
// 64 bits above the app precision.
func (a *app) parseFloat(s string) (*big.Float, error) {
	x, _, err := big.ParseFloat(s, 0, a.ctx.Prec+64, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", s, err)
	}
	return x, nil
}
