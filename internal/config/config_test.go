// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.DiffChunkSize != 8000 {
		t.Errorf("DiffChunkSize = %d, want 8000", cfg.DiffChunkSize)
	}
	if cfg.ProseChunkSize != 1000 {
		t.Errorf("ProseChunkSize = %d, want 1000", cfg.ProseChunkSize)
	}
	if cfg.ProseOverlap != 200 {
		t.Errorf("ProseOverlap = %d, want 200", cfg.ProseOverlap)
	}
	if cfg.MaxTurns != 12 {
		t.Errorf("MaxTurns = %d, want 12", cfg.MaxTurns)
	}
	if cfg.SearchK != 5 {
		t.Errorf("SearchK = %d, want 5", cfg.SearchK)
	}
	if cfg.GitHubBaseURL != "https://api.github.com" {
		t.Errorf("GitHubBaseURL = %s", cfg.GitHubBaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	// Set custom environment variables
	os.Clearenv()
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("PRSIGHT_CHAT_MODEL", "gpt-4")
	os.Setenv("PRSIGHT_EMBEDDING_MODEL", "text-embedding-3-large")
	os.Setenv("PRSIGHT_OPENAI_TIMEOUT", "90s")
	os.Setenv("PRSIGHT_OPENAI_MAX_RETRIES", "5")
	os.Setenv("PRSIGHT_OPENAI_RETRY_DELAY", "3s")
	os.Setenv("PRSIGHT_DIFF_CHUNK_SIZE", "4000")
	os.Setenv("PRSIGHT_CHUNK_SIZE", "1500")
	os.Setenv("PRSIGHT_CHUNK_OVERLAP", "300")
	os.Setenv("PRSIGHT_MAX_TURNS", "20")
	os.Setenv("PRSIGHT_SEARCH_K", "10")
	os.Setenv("PRSIGHT_DATA_DIR", "/tmp/prsight-test")
	os.Setenv("GITHUB_TOKEN", "ghp_test")
	os.Setenv("GITHUB_OWNER", "acme")
	os.Setenv("GITHUB_REPO", "widgets")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify custom values
	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.ChatModel != "gpt-4" {
		t.Errorf("ChatModel = %s, want gpt-4", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-large", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 3*time.Second {
		t.Errorf("RetryDelay = %v, want 3s", cfg.RetryDelay)
	}
	if cfg.DiffChunkSize != 4000 {
		t.Errorf("DiffChunkSize = %d, want 4000", cfg.DiffChunkSize)
	}
	if cfg.ProseChunkSize != 1500 {
		t.Errorf("ProseChunkSize = %d, want 1500", cfg.ProseChunkSize)
	}
	if cfg.ProseOverlap != 300 {
		t.Errorf("ProseOverlap = %d, want 300", cfg.ProseOverlap)
	}
	if cfg.MaxTurns != 20 {
		t.Errorf("MaxTurns = %d, want 20", cfg.MaxTurns)
	}
	if cfg.SearchK != 10 {
		t.Errorf("SearchK = %d, want 10", cfg.SearchK)
	}
	if cfg.DataDir != "/tmp/prsight-test" {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.GitHubToken != "ghp_test" || cfg.GitHubOwner != "acme" || cfg.GitHubRepo != "widgets" {
		t.Error("GitHub settings not loaded from environment")
	}
}

func TestValidate_InvalidChunking(t *testing.T) {
	cfg := validConfig()
	cfg.ProseChunkSize = 200
	cfg.ProseOverlap = 200
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when overlap equals chunk size")
	}

	cfg = validConfig()
	cfg.DiffChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for zero diff chunk size")
	}
}

func TestValidate_InvalidMaxTurns(t *testing.T) {
	cfg := validConfig()
	cfg.MaxTurns = 2
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for MaxTurns < 3")
	}
}

func TestValidate_InvalidSearchK(t *testing.T) {
	cfg := validConfig()
	cfg.SearchK = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for SearchK <= 0")
	}
}

func TestValidate_InvalidMaxRetries(t *testing.T) {
	cfg := validConfig()
	cfg.MaxRetries = 15
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for MaxRetries > 10")
	}

	cfg.MaxRetries = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for MaxRetries < 0")
	}
}

func TestIndexAndDBPaths(t *testing.T) {
	cfg := validConfig()
	cfg.DataDir = "/data/prsight"

	if got := cfg.IndexDir(); got != "/data/prsight/index" {
		t.Errorf("IndexDir() = %s", got)
	}
	if got := cfg.DBPath(); got != "/data/prsight/prsight.db" {
		t.Errorf("DBPath() = %s", got)
	}
}

func validConfig() *Config {
	return &Config{
		DiffChunkSize:  8000,
		ProseChunkSize: 1000,
		ProseOverlap:   200,
		MaxTurns:       12,
		SearchK:        5,
		MaxRetries:     3,
		GitHubRPS:      2.0,
	}
}
