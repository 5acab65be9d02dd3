package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine/internal/cli"
	"github.com/streamblocks/actormachine/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every actor description for consistency",
	Long: `Validates guards, port references and states of every actor, then reports
unreachable states and conditions that exceed channel capacities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, release, err := setup(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer release()

		if err := cli.RunValidate(cmd.Context(), c, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Library is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
