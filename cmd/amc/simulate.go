package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine/internal/cli"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/runner"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <actor>",
	Short: "Run an actor instance until it stalls",
	Long: `Creates an instance of the actor, fills its input FIFOs and fires transitions
with the selected controller strategy until no transition is eligible.

Example:
  amc simulate pairsum --input in=1,2,3,4 --strategy fsm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("input")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		jsonOut, _ := cmd.Flags().GetBool("json")

		inputs, err := cli.ParseInputs(raw)
		if err != nil {
			return err
		}

		c, opts, logger, release, err := setup(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer release()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		_, err = cli.RunSimulate(ctx, c, cli.SimulateOptions{
			Actor:    args[0],
			Strategy: opts.Strategy,
			Inputs:   inputs,
			MaxSteps: maxSteps,
			JSON:     jsonOut,
		}, cmd.OutOrStdout(), logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringArrayP("input", "i", nil, "Tokens for an input port, as port=v1,v2 (repeatable)")
	simulateCmd.Flags().Int("max-steps", runner.DefaultMaxSteps, "Maximum number of scheduling steps")
	simulateCmd.Flags().Bool("json", false, "Print steps and the final instance as JSON lines")
}
