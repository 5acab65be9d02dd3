package main

import (
	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine/internal/cli"
	"github.com/streamblocks/actormachine/internal/presentation/tui"
	"github.com/streamblocks/actormachine/pkg/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report controller statistics for the library",
	Long: `Compiles every actor and reports the number of actors, the sums of states,
conditions and transitions, the largest controller and the dispatch sizes of
every strategy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		c, _, _, release, err := setup(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer release()

		render := tui.NewRenderer()
		if raw {
			render = nil
		}
		return cli.RunStats(cmd.Context(), c, cmd.OutOrStdout(), render)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("raw", false, "Print the markdown report without terminal rendering")
}
