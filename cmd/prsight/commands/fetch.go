// ABOUTME: Fetch command prints the full stored analysis for one PR
// ABOUTME: Reassembles the analysis text from its indexed chunks in order
package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prsight/prsight/internal/store"
)

// NewFetchCmd creates the fetch command
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <pr-number>",
		Short: "Fetch the stored analysis for a PR",
		Long: `Fetch the complete stored analysis for one pull request.

The analysis is reassembled from its indexed chunks so overlapping
bytes appear only once.

Examples:
  prsight fetch 16487
  prsight fetch --format json 16487`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	number, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || number <= 0 {
		return fmt.Errorf("invalid PR number: %s", args[0])
	}

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

	records, err := rs.Fetch(number)
	if err != nil {
		return fmt.Errorf("fetching analysis: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no analysis indexed for PR #%d", number)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "PR #%d: %s\n", records[0].EntityID, records[0].Title)
		fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %s, %d chunk(s)\n\n", formatTime(records[0].AnalyzedAt), records[0].TotalChunks)
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Reassemble(records))

	return nil
}
