// ABOUTME: Analyze command runs the LLM analysis pipeline for PRs
// ABOUTME: Single PR by number, or a merge-date range with bounded concurrency
package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	analyzeDays        int
	analyzeSince       string
	analyzeConcurrency int
	analyzeForce       bool
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [pr-number]",
		Short: "Analyze pull requests with the LLM",
		Long: `Analyze merged pull requests and index the results.

With a PR number, analyzes that single pull request. Without one,
analyzes every PR merged in the requested window (--days or --since).

Already indexed PRs are skipped unless --force is given.

Examples:
  prsight analyze 16487
  prsight analyze 16487 --force
  prsight analyze --days 30
  prsight analyze --since 2026-01-01 --concurrency 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().IntVar(&analyzeDays, "days", 30, "Analyze PRs merged in the last N days")
	cmd.Flags().StringVar(&analyzeSince, "since", "", "Analyze PRs merged since this date (YYYY-MM-DD, overrides --days)")
	cmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 2, "Concurrent analysis sessions for range mode")
	cmd.Flags().BoolVar(&analyzeForce, "force", false, "Re-analyze PRs that are already indexed")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	coord, _, err := newCoordinator(cfg, log)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		number, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || number <= 0 {
			return fmt.Errorf("invalid PR number: %s", args[0])
		}

		result, err := coord.AnalyzePR(cmd.Context(), number, analyzeForce)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			jsonData, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
			return nil
		}

		if result.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "PR #%d already indexed (use --force to re-analyze)\n", number)
			return nil
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "PR #%d analyzed and indexed (%d chunks)\n\n", result.Number, len(result.ChunkIDs))
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Analysis)
		return nil
	}

	// Range mode
	if err := validatePositiveInt(analyzeConcurrency, "concurrency"); err != nil {
		return err
	}
	since, err := resolveSince(analyzeSince, analyzeDays)
	if err != nil {
		return err
	}

	batch, err := coord.AnalyzeRange(cmd.Context(), since, analyzeConcurrency, analyzeForce)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Analyzed: %d  Skipped: %d  Failed: %d\n",
		batch.Analyzed, batch.Skipped, batch.Failed)
	return nil
}

// resolveSince turns --since/--days into a cutoff time.
func resolveSince(since string, days int) (time.Time, error) {
	if since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --since date %q (want YYYY-MM-DD): %w", since, err)
		}
		return t, nil
	}
	if err := validatePositiveInt(days, "days"); err != nil {
		return time.Time{}, err
	}
	return time.Now().AddDate(0, 0, -days), nil
}
