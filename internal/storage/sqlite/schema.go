// ABOUTME: SQLite database schema for scraped pull request data
// ABOUTME: Creates pull_requests, pr_comments, and pr_diffs tables with indexes
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Pull request metadata
CREATE TABLE IF NOT EXISTS pull_requests (
    number INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT,
    author TEXT,
    state TEXT,
    labels TEXT,
    additions INTEGER DEFAULT 0,
    deletions INTEGER DEFAULT 0,
    changed_files INTEGER DEFAULT 0,
    base_branch TEXT,
    head_branch TEXT,
    created_at DATETIME,
    merged_at DATETIME,
    fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Human review comments, bot accounts filtered at ingest
CREATE TABLE IF NOT EXISTS pr_comments (
    id INTEGER PRIMARY KEY,
    pr_number INTEGER NOT NULL REFERENCES pull_requests(number) ON DELETE CASCADE,
    author TEXT,
    body TEXT,
    created_at DATETIME
);

-- Unified diffs, one row per pull request
CREATE TABLE IF NOT EXISTS pr_diffs (
    pr_number INTEGER PRIMARY KEY REFERENCES pull_requests(number) ON DELETE CASCADE,
    diff TEXT NOT NULL,
    byte_length INTEGER DEFAULT 0
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_prs_merged ON pull_requests(merged_at);
CREATE INDEX IF NOT EXISTS idx_comments_pr ON pr_comments(pr_number);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
