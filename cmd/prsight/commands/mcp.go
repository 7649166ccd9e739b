// ABOUTME: MCP command starts a Model Context Protocol server over stdio
// ABOUTME: Exposes the analysis index to LLM agents as search and fetch tools
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/prsight/prsight/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start an MCP (Model Context Protocol) server over stdio.

Exposes the analysis index to LLM agents as search_analyses,
fetch_analysis, and index_stats tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the agent host)
  prsight mcp

  # Configure in the agent host's MCP config:
  # {
  #   "mcpServers": {
  #     "prsight": {
  #       "command": "prsight",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("initializing LLM client: %w", err)
	}
	rs, err := openStore(cfg, client)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"prsight analysis index",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, rs)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Info().Msg("MCP server starting on stdio")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Info().Msg("shutdown signal received")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
