// ABOUTME: Sync command mirrors merged PRs from GitHub into local storage
// ABOUTME: Fetches metadata, diff, and comments so analysis can run offline
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prsight/prsight/internal/storage/sqlite"
)

var (
	syncDays  int
	syncSince string
)

// NewSyncCmd creates the sync command
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror merged PRs into local storage",
		Long: `Mirror merged pull requests from GitHub into the local database.

For each PR merged in the requested window, stores its metadata,
unified diff, and review comments. Re-syncing a PR replaces its
stored copy.

Examples:
  prsight sync --days 30
  prsight sync --since 2026-01-01`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}

	cmd.Flags().IntVar(&syncDays, "days", 30, "Sync PRs merged in the last N days")
	cmd.Flags().StringVar(&syncSince, "since", "", "Sync PRs merged since this date (YYYY-MM-DD, overrides --days)")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	gh, err := newGitHubClient(cfg, log)
	if err != nil {
		return err
	}

	since, err := resolveSince(syncSince, syncDays)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()
	store := sqlite.NewPRStore(db)

	ctx := cmd.Context()
	prs, err := gh.ListMergedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("listing merged PRs: %w", err)
	}

	synced := 0
	for i := range prs {
		pr := &prs[i]

		diff, err := gh.GetDiff(ctx, pr.Number)
		if err != nil {
			log.Error().Err(err).Int64("pr", pr.Number).Msg("diff fetch failed, skipping")
			continue
		}
		comments, err := gh.ListComments(ctx, pr.Number)
		if err != nil {
			log.Error().Err(err).Int64("pr", pr.Number).Msg("comment fetch failed, skipping")
			continue
		}

		if err := store.Save(pr, diff, comments); err != nil {
			log.Error().Err(err).Int64("pr", pr.Number).Msg("save failed, skipping")
			continue
		}
		synced++
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Synced PR #%d: %s\n", pr.Number, pr.Title)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d of %d merged PR(s) into %s\n", synced, len(prs), cfg.DBPath())
	}

	return nil
}
