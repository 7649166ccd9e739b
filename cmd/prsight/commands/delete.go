// ABOUTME: Delete command removes a PR's analysis from the index
// ABOUTME: Idempotent: deleting an absent PR succeeds with a notice
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <pr-number>",
		Short: "Delete a PR's indexed analysis",
		Long: `Delete every indexed chunk for one pull request.

Deleting a PR that is not indexed is not an error.

Examples:
  prsight delete 16487`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	removed, err := rs.Delete(number)
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}

	if quiet {
		return nil
	}
	if removed == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "PR #%d was not indexed\n", number)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d chunk(s) for PR #%d\n", removed, number)
	}

	return nil
}
