package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/aretw0/augtree/internal/logging"
	"github.com/aretw0/augtree/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts augtree as an MCP Server over stdio, exposing the run_commands and
check_commands tools and the augtree://spec resource.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, _, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		slog.SetDefault(logging.New(slog.LevelInfo))

		srv := mcp.NewServer(stack.Engine.Host())
		slog.Info("Starting augtree MCP Server (Stdio)...")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP Server execution failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
