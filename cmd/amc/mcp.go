package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/streamblocks/actormachine"
	"github.com/streamblocks/actormachine/internal/logging"
	"github.com/streamblocks/actormachine/pkg/adapters/mcp"
	"github.com/streamblocks/actormachine/pkg/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the actor library as MCP tools, so agents can list actors, inspect
and render controllers and ask which transition would fire.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		c, opts, _, release, err := setup(cmd, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer release()

		// MCP speaks JSON-RPC on stdout, logs always go to stderr.
		level := logging.LevelFromEnv()
		if opts.Debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)
		srv := mcp.NewServer(c, actormachine.Version, logger)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			logger.Info("Starting amc MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting amc MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
