// ABOUTME: Shared utility functions and constructors for CLI commands
// ABOUTME: Config loading, store/client wiring, and display formatting helpers
package commands

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/prsight/prsight/internal/analyzer"
	"github.com/prsight/prsight/internal/config"
	"github.com/prsight/prsight/internal/github"
	"github.com/prsight/prsight/internal/llm"
	"github.com/prsight/prsight/internal/logging"
	"github.com/prsight/prsight/internal/session"
	"github.com/prsight/prsight/internal/store"

	openai "github.com/sashabaranov/go-openai"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// loadConfig loads .env and the environment configuration, adjusting the
// log level for the global verbosity flags.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	} else if quiet {
		cfg.LogLevel = "error"
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.Setup(cfg.LogLevel, cfg.LogFile)
}

// newLLMClient builds the OpenAI client from config.
func newLLMClient(cfg *config.Config) (*llm.Client, error) {
	return llm.NewClient(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
}

// openStore opens the retrieval index under the configured data dir,
// backed by the given embedder.
func openStore(cfg *config.Config, embedder store.Embedder) (*store.RetrievalStore, error) {
	index, err := store.OpenIndex(cfg.IndexDir())
	if err != nil {
		return nil, fmt.Errorf("opening index at %s: %w", cfg.IndexDir(), err)
	}
	return store.New(index, embedder, store.Config{
		MaxChunkSize: cfg.ProseChunkSize,
		OverlapSize:  cfg.ProseOverlap,
		DefaultK:     cfg.SearchK,
	})
}

// newGitHubClient builds the GitHub API client from config.
func newGitHubClient(cfg *config.Config, log zerolog.Logger) (*github.Client, error) {
	return github.NewClient(github.Config{
		Token:             cfg.GitHubToken,
		Owner:             cfg.GitHubOwner,
		Repo:              cfg.GitHubRepo,
		BaseURL:           cfg.GitHubBaseURL,
		RequestsPerSecond: cfg.GitHubRPS,
	}, log)
}

// chatOpener adapts the LLM client to the coordinator's conversation
// factory: one fresh chat session per analysis.
type chatOpener struct {
	client *llm.Client
}

func (o chatOpener) OpenConversation(systemPrompt string) session.Transport {
	return o.client.NewChatSession(systemPrompt)
}

// newCoordinator wires the full analysis pipeline from config.
func newCoordinator(cfg *config.Config, log zerolog.Logger) (*analyzer.Coordinator, *store.RetrievalStore, error) {
	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	rs, err := openStore(cfg, client)
	if err != nil {
		return nil, nil, err
	}
	gh, err := newGitHubClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	coord, err := analyzer.New(gh, chatOpener{client: client}, rs, analyzer.Config{
		DiffChunkSize: cfg.DiffChunkSize,
		MaxTurns:      cfg.MaxTurns,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return coord, rs, nil
}
