package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine/internal/cli"
	"github.com/streamblocks/actormachine/pkg/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph [actor]",
	Short: "Export the controller graph of an actor",
	Long:  `Prints the controller graph as a Mermaid flowchart or a Graphviz digraph.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		current, _ := cmd.Flags().GetString("current")
		actor := ""
		if len(args) > 0 {
			actor = args[0]
		}

		c, _, _, release, err := setup(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer release()

		out, err := cli.RenderGraph(cmd.Context(), c, actor, format, current)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", cli.FormatMermaid, "Output format: mermaid or dot")
	graphCmd.Flags().String("current", "", "State to highlight")
}
