// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Defines the prsight command tree and shared output settings
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗ ██████╗ ███████╗██╗ ██████╗ ██╗  ██╗████████╗
██╔══██╗██╔══██╗██╔════╝██║██╔════╝ ██║  ██║╚══██╔══╝
██████╔╝██████╔╝███████╗██║██║  ███╗███████║   ██║
██╔═══╝ ██╔══██╗╚════██║██║██║   ██║██╔══██║   ██║
██║     ██║  ██║███████║██║╚██████╔╝██║  ██║   ██║
╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prsight",
		Short: "LLM-powered pull request analysis and retrieval",
		Long: banner + `
prsight analyzes merged pull requests with an LLM and indexes the
analyses for semantic search.

Each PR's metadata and diff are transmitted to the model over multiple
turns, the resulting analysis is chunked and embedded, and the index
can then be searched by symptom, error message, or topic - from the
CLI or over MCP.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
