package main

import (
	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine/internal/cli"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a library with sample actors",
	Long:  `Writes sample actor documents (Markdown with frontmatter) into the directory.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if len(args) > 0 {
			dir = args[0]
		}
		return cli.RunInit(cmd.Context(), dir, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
