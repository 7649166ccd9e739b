// ABOUTME: Centralized configuration for the PR analysis pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the analysis pipeline
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	OpenAIBaseURL  string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// GitHub settings
	GitHubToken   string
	GitHubOwner   string
	GitHubRepo    string
	GitHubBaseURL string
	GitHubRPS     float64

	// Chunking settings
	DiffChunkSize  int
	ProseChunkSize int
	ProseOverlap   int

	// Session settings
	MaxTurns int

	// Search settings
	SearchK int

	// Storage settings
	DataDir string

	// Logging settings
	LogLevel string
	LogFile  string
}

// DefaultDataDir returns the data directory following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "prsight")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "prsight")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		ChatModel:      getEnv("PRSIGHT_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("PRSIGHT_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:        getEnvDuration("PRSIGHT_OPENAI_TIMEOUT", 60*time.Second),
		MaxRetries:     getEnvInt("PRSIGHT_OPENAI_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("PRSIGHT_OPENAI_RETRY_DELAY", 2*time.Second),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:    os.Getenv("GITHUB_OWNER"),
		GitHubRepo:     os.Getenv("GITHUB_REPO"),
		GitHubBaseURL:  getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubRPS:      getEnvFloat("PRSIGHT_GITHUB_RPS", 2.0),
		DiffChunkSize:  getEnvInt("PRSIGHT_DIFF_CHUNK_SIZE", 8000),
		ProseChunkSize: getEnvInt("PRSIGHT_CHUNK_SIZE", 1000),
		ProseOverlap:   getEnvInt("PRSIGHT_CHUNK_OVERLAP", 200),
		MaxTurns:       getEnvInt("PRSIGHT_MAX_TURNS", 12),
		SearchK:        getEnvInt("PRSIGHT_SEARCH_K", 5),
		DataDir:        getEnv("PRSIGHT_DATA_DIR", DefaultDataDir()),
		LogLevel:       getEnv("PRSIGHT_LOG_LEVEL", "info"),
		LogFile:        getEnv("PRSIGHT_LOG_FILE", ""),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.DiffChunkSize <= 0 {
		return fmt.Errorf("PRSIGHT_DIFF_CHUNK_SIZE must be positive, got %d", c.DiffChunkSize)
	}
	if c.ProseChunkSize <= c.ProseOverlap {
		return fmt.Errorf("PRSIGHT_CHUNK_SIZE (%d) must exceed PRSIGHT_CHUNK_OVERLAP (%d)", c.ProseChunkSize, c.ProseOverlap)
	}
	if c.ProseOverlap < 0 {
		return fmt.Errorf("PRSIGHT_CHUNK_OVERLAP must be non-negative, got %d", c.ProseOverlap)
	}
	if c.MaxTurns < 3 {
		// One info turn, at least one chunk, one analysis request.
		return fmt.Errorf("PRSIGHT_MAX_TURNS must be at least 3, got %d", c.MaxTurns)
	}
	if c.SearchK <= 0 {
		return fmt.Errorf("PRSIGHT_SEARCH_K must be positive, got %d", c.SearchK)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("PRSIGHT_OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.GitHubRPS <= 0 {
		return fmt.Errorf("PRSIGHT_GITHUB_RPS must be positive, got %f", c.GitHubRPS)
	}
	return nil
}

// IndexDir returns the retrieval index directory under the data dir.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// DBPath returns the sqlite database path under the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "prsight.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
