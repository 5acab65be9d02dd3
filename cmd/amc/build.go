package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine/internal/cli"
	"github.com/streamblocks/actormachine/pkg/domain"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile every actor of the library",
	Long: `Builds the controller graph of every actor, prunes unreachable states and
projects the graph with every strategy. With --watch the library is rebuilt
whenever a description changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		jsonOut, _ := cmd.Flags().GetBool("json")

		c, _, logger, release, err := setup(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer release()

		if !watch {
			return cli.RunBuild(cmd.Context(), c, cmd.OutOrStdout(), jsonOut)
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		err = cli.WatchBuild(ctx, c, cmd.OutOrStdout(), jsonOut, logger)
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Stopping watcher (signal received)", "signal", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolP("watch", "w", false, "Rebuild on description changes")
	buildCmd.Flags().Bool("json", false, "Print build results as JSON")
}
