// ABOUTME: Stats command reports retrieval index size
// ABOUTME: Chunk and distinct-PR counts in table or JSON form
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Show how many analysis chunks and distinct pull requests are indexed.

Examples:
  prsight stats
  prsight stats --format json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newLLMClient(cfg)
	if err != nil {
		return err
	}
	rs, err := openStore(cfg, client)
	if err != nil {
		return err
	}

	stats, err := rs.Stats()
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed chunks: %d\n", stats.TotalDocuments)
	fmt.Fprintf(cmd.OutOrStdout(), "Pull requests:  %d\n", stats.TotalEntities)
	fmt.Fprintf(cmd.OutOrStdout(), "Index dir:      %s\n", cfg.IndexDir())

	return nil
}
