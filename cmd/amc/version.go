package main

import (
	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of amc",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), actormachine.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
