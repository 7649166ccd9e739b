// ABOUTME: AnalysisCoordinator wires data source, transmission session, and retrieval store
// ABOUTME: Analyze-one-PR plus bounded-concurrency batch analysis over a merge-date range
package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/prsight/prsight/internal/core"
	"github.com/prsight/prsight/internal/models"
	"github.com/prsight/prsight/internal/session"
	"github.com/prsight/prsight/internal/store"
)

// SourceTag marks records produced by this pipeline in the retrieval index.
const SourceTag = "llm_analysis"

// DataSource supplies pull request data. Implemented by the GitHub client;
// tests substitute a fake.
type DataSource interface {
	GetPullRequest(ctx context.Context, number int64) (*models.PullRequest, error)
	GetDiff(ctx context.Context, number int64) (string, error)
	ListComments(ctx context.Context, number int64) ([]models.PRComment, error)
	ListMergedSince(ctx context.Context, since time.Time) ([]models.PullRequest, error)
}

// TransportOpener starts a fresh conversation per session. The underlying
// endpoint is stateful across turns, so conversations are never reused.
type TransportOpener interface {
	OpenConversation(systemPrompt string) session.Transport
}

// Config holds the coordinator's tunables.
type Config struct {
	DiffChunkSize int
	MaxTurns      int
}

// Result describes the outcome for a single pull request.
type Result struct {
	Number   int64    `json:"number"`
	Title    string   `json:"title"`
	Skipped  bool     `json:"skipped"`
	Analysis string   `json:"analysis,omitempty"`
	ChunkIDs []string `json:"chunk_ids,omitempty"`
}

// BatchResult aggregates a range analysis.
type BatchResult struct {
	Analyzed int      `json:"analyzed"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Results  []Result `json:"results"`
}

// Coordinator is the end-to-end "analyze one pull request" façade.
type Coordinator struct {
	source DataSource
	opener TransportOpener
	store  *store.RetrievalStore
	cfg    Config
	log    zerolog.Logger
}

// New creates a coordinator.
func New(source DataSource, opener TransportOpener, rs *store.RetrievalStore, cfg Config, log zerolog.Logger) (*Coordinator, error) {
	if cfg.DiffChunkSize <= 0 {
		return nil, fmt.Errorf("diff chunk size must be positive, got %d", cfg.DiffChunkSize)
	}
	if cfg.MaxTurns < 3 {
		return nil, fmt.Errorf("max turns must be at least 3, got %d", cfg.MaxTurns)
	}
	return &Coordinator{source: source, opener: opener, store: rs, cfg: cfg, log: log}, nil
}

// AnalyzePR runs the full pipeline for one pull request: fetch, transmit,
// analyze, index. With force unset an already indexed PR is skipped; with
// force set its existing records are deleted and it is re-analyzed.
func (c *Coordinator) AnalyzePR(ctx context.Context, number int64, force bool) (*Result, error) {
	// Correlation ID ties all log lines of one analysis together.
	log := c.log.With().Int64("pr", number).Str("session", uuid.New().String()[:8]).Logger()

	exists, err := c.store.HasEntity(number)
	if err != nil {
		return nil, fmt.Errorf("checking index for PR #%d: %w", number, err)
	}
	if exists {
		if !force {
			log.Info().Msg("already indexed, skipping")
			return &Result{Number: number, Skipped: true}, nil
		}
		if _, err := c.store.Delete(number); err != nil {
			return nil, fmt.Errorf("removing stale records for PR #%d: %w", number, err)
		}
	}

	pr, err := c.source.GetPullRequest(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR #%d: %w", number, err)
	}
	diff, err := c.source.GetDiff(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetching diff for PR #%d: %w", number, err)
	}
	comments, err := c.source.ListComments(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetching comments for PR #%d: %w", number, err)
	}

	chunks, err := core.SplitDiff(diff, c.cfg.DiffChunkSize)
	if err != nil {
		return nil, fmt.Errorf("splitting diff for PR #%d: %w", number, err)
	}
	log.Debug().Int("chunks", len(chunks)).Int("diff_bytes", len(diff)).Msg("diff split")

	sess := session.New(c.opener.OpenConversation(SystemPrompt), c.cfg.MaxTurns)
	analysis, err := sess.Run(ctx, BuildInfoTurn(pr, comments), chunks, AnalysisRequest)
	if err != nil {
		return nil, fmt.Errorf("analysis session for PR #%d: %w", number, err)
	}

	chunkIDs, err := c.store.Add(store.Document{
		EntityID:   pr.Number,
		Title:      pr.Title,
		Text:       FormatIndexedText(pr.Number, pr.Title, analysis),
		SourceTag:  SourceTag,
		Labels:     pr.Labels,
		Author:     pr.Author,
		AnalyzedAt: time.Now().UTC(),
		MergedAt:   pr.MergedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("indexing analysis for PR #%d: %w", number, err)
	}

	log.Info().Int("turns", sess.TurnsUsed()).Int("records", len(chunkIDs)).Msg("analysis indexed")
	return &Result{Number: pr.Number, Title: pr.Title, Analysis: analysis, ChunkIDs: chunkIDs}, nil
}

// AnalyzeRange analyzes every PR merged at or after since, running up to
// concurrency sessions in parallel. Individual PR failures are counted,
// not fatal: one unanalyzable PR must not sink the batch.
func (c *Coordinator) AnalyzeRange(ctx context.Context, since time.Time, concurrency int, force bool) (*BatchResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	prs, err := c.source.ListMergedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("listing merged PRs: %w", err)
	}
	c.log.Info().Int("count", len(prs)).Time("since", since).Msg("starting batch analysis")

	var (
		mu    sync.Mutex
		batch BatchResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, pr := range prs {
		number := pr.Number
		g.Go(func() error {
			result, err := c.AnalyzePR(ctx, number, force)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				batch.Failed++
				c.log.Error().Err(err).Int64("pr", number).Msg("analysis failed")
			case result.Skipped:
				batch.Skipped++
				batch.Results = append(batch.Results, *result)
			default:
				batch.Analyzed++
				batch.Results = append(batch.Results, *result)
			}
			// Only context cancellation aborts the whole batch.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &batch, err
	}
	return &batch, nil
}
