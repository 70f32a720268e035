package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/goodcast/goodapi"
	"github.com/goodcast/goodapi/internal/cli"
	"github.com/goodcast/goodapi/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes read-only staff tools (recent events, polls, the event catalog)
to MCP clients, using the same backends as serve.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := goodapi.New(sigCtx, cfg, goodapi.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		defer app.Close()

		srv := mcp.NewServer(app.Leafwatch(), app.Polls(), goodapi.Version, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting goodapi MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting goodapi MCP Server (SSE)", "port", port)
			return srv.ServeSSE(sigCtx, port)
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
