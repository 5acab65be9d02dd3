package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/internal/cli"
	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/strategy"
)

var rootCmd = &cobra.Command{
	Use:   "amc",
	Short: "amc compiles dataflow actors into actor machine controllers",
	Long: `amc reads actor descriptions (states, guarded transitions and conditions),
builds their controller graphs and projects them into runtime dispatch
structures with the FSM, Branching, QuickJump and StrawMan strategies.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the actor library")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("strategy", string(strategy.QuickJump), "Controller strategy: fsm, branching, quickjump or strawman")
	rootCmd.PersistentFlags().String("source", cli.SourceLoam, "Description source: loam (Markdown frontmatter) or file (YAML/JSON)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address used to cache controller graphs")
	rootCmd.PersistentFlags().String("evaluator", "", "Process evaluator config (YAML/JSON); Lua is used when empty")
}

func loadOptions(cmd *cobra.Command) (cli.Options, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	debug, _ := flags.GetBool("debug")
	name, _ := flags.GetString("strategy")
	source, _ := flags.GetString("source")
	redis, _ := flags.GetString("redis")
	evaluator, _ := flags.GetString("evaluator")

	kind, err := strategy.ParseKind(name)
	if err != nil {
		return cli.Options{}, err
	}
	return cli.Options{
		Dir:       dir,
		Debug:     debug,
		Strategy:  kind,
		Source:    source,
		Redis:     redis,
		Evaluator: evaluator,
	}, nil
}

// setup resolves the flags and builds a compiler. The caller must invoke
// the returned release function.
func setup(cmd *cobra.Command, hooks domain.LifecycleHooks) (*actormachine.Compiler, cli.Options, *slog.Logger, func() error, error) {
	opts, err := loadOptions(cmd)
	if err != nil {
		return nil, opts, nil, nil, err
	}
	logger := cli.CreateLogger(opts.Debug)
	c, release, err := cli.NewCompiler(opts, logger, hooks)
	if err != nil {
		return nil, opts, nil, nil, err
	}
	return c, opts, logger, release, nil
}
