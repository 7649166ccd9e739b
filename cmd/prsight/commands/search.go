// ABOUTME: CLI command to search indexed PR analyses
// ABOUTME: Semantic search with optional PR filter, score display, and full text
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prsight/prsight/internal/store"
)

var (
	searchTopK      int
	searchWithScore bool
	searchFull      bool
	searchPR        int64
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed analyses",
		Long: `Search indexed PR analyses by semantic similarity.

Queries work best phrased as symptoms or topics: an error message,
a misbehavior description, or a subsystem name.

Examples:
  prsight search "connection reset during replication"
  prsight search --top-k 10 --with-score "memory leak"
  prsight search --pr 16487 "failure modes"
  prsight search --format json "deadlock"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchTopK, "top-k", 0, "Maximum results to return (default: configured search k)")
	cmd.Flags().BoolVar(&searchWithScore, "with-score", false, "Show similarity scores")
	cmd.Flags().BoolVar(&searchFull, "full", false, "Print full chunk text instead of a preview")
	cmd.Flags().Int64Var(&searchPR, "pr", 0, "Restrict results to one PR number")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	query := args[0]
	topK := searchTopK
	if topK == 0 {
		topK = rs.DefaultK()
	}
	if err := validatePositiveInt(topK, "top-k"); err != nil {
		return err
	}

	var filter *store.Filter
	if searchPR > 0 {
		pr := searchPR
		filter = &store.Filter{EntityID: &pr}
	}

	results, err := rs.SearchWithScore(query, topK, filter)
	if err != nil {
		return fmt.Errorf("searching analyses: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No analyses found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if searchWithScore {
		fmt.Fprintf(w, "SCORE\tPR\tTITLE\tANALYZED\tPREVIEW\n")
		fmt.Fprintf(w, "-----\t--\t-----\t--------\t-------\n")
	} else {
		fmt.Fprintf(w, "PR\tTITLE\tANALYZED\tPREVIEW\n")
		fmt.Fprintf(w, "--\t-----\t--------\t-------\n")
	}

	for _, result := range results {
		preview := result.Record.Text
		if !searchFull {
			preview = truncate(preview, 60)
		}
		if searchWithScore {
			fmt.Fprintf(w, "%.3f\t#%d\t%s\t%s\t%s\n",
				result.Score,
				result.Record.EntityID,
				truncate(result.Record.Title, 30),
				formatTime(result.Record.AnalyzedAt),
				preview)
		} else {
			fmt.Fprintf(w, "#%d\t%s\t%s\t%s\n",
				result.Record.EntityID,
				truncate(result.Record.Title, 30),
				formatTime(result.Record.AnalyzedAt),
				preview)
		}
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}

	return nil
}
