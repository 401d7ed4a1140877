package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fisherproject/fisher/internal/common/logging"
	"github.com/fisherproject/fisher/internal/common/marketerrors"
	"github.com/fisherproject/fisher/internal/fisherctl"
	"github.com/fisherproject/fisher/pkg/market"
	"github.com/fisherproject/fisher/pkg/market/solver"
	"github.com/fisherproject/fisher/pkg/market/solver/gradient"
	"github.com/fisherproject/fisher/pkg/market/solver/propresponse"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fisherctl",
		Short: "fisherctl computes competitive equilibria for linear-utility Fisher markets.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				panic(err)
			}
			logging.Configure(verbose)
		},
	}

	cmd.PersistentFlags().String("engine", "propresponse", "Numerical engine to use: propresponse or gradient.")
	cmd.PersistentFlags().Duration("timeout", 0, "Per-solve timeout; 0 disables it.")
	cmd.PersistentFlags().Bool("retry-relaxed", false, "Re-attempt once with relaxed tolerance on non-convergence.")
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging.")

	cmd.AddCommand(
		egalitarianCmd(),
		examplesCmd(),
		solveCmd(),
	)

	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := RootCmd().Execute(); err != nil {
		logging.StdLogger().WithStacktrace(err).Error("command failed")
		os.Exit(1)
	}
}

// appFromFlags builds the application from the persistent flags.
func appFromFlags(flags *pflag.FlagSet) (*fisherctl.App, error) {
	engineName, err := flags.GetString("engine")
	if err != nil {
		return nil, err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	retryRelaxed, err := flags.GetBool("retry-relaxed")
	if err != nil {
		return nil, err
	}

	var engine solver.Engine
	switch engineName {
	case "propresponse":
		engine = propresponse.Default()
	case "gradient":
		engine = gradient.MustNew(solver.Config{}, nil)
	default:
		return nil, errors.WithStack(&marketerrors.ErrInvalidArgument{
			Name:    "engine",
			Value:   engineName,
			Message: "must be propresponse or gradient",
		})
	}
	logging.Debugf("solving with the %q engine", engineName)

	params := market.DefaultParameters()
	params.RetryRelaxed = retryRelaxed
	s, err := market.NewSolver(engine, params)
	if err != nil {
		return nil, err
	}
	return &fisherctl.App{
		Out:     os.Stdout,
		Solver:  s,
		Timeout: timeout,
	}, nil
}
