package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/cli"
	"github.com/aretw0/walkthrough/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [workflow]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the walkthrough as an MCP server so an AI agent can read the current
step and drive the wizard with tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		debug, _ := cmd.Flags().GetBool("debug")
		logger := newLogger(settings)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		wf, err := cli.OpenWorkflow(settings.Config, settings.ContentDir, logger)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenStore(ctx, settings)
		if err != nil {
			return err
		}
		defer closer.Close()

		eng, err := walkthrough.New(wf.Source, cli.EngineOptions(settings, wf, store, logger, debug)...)
		if err != nil {
			return err
		}
		if err := eng.Start(ctx); err != nil {
			// The agent still sees the error step through current_step.
			logger.Error("walkthrough failed to start", "err", err)
		}

		srv := mcp.NewServer(eng, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting walkthrough MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting walkthrough MCP server (SSE)", "port", port)
			return srv.ServeSSE(ctx, port)
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
