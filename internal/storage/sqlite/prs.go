// ABOUTME: Pull request storage operations for SQLite
// ABOUTME: Transactional upsert of PR + diff + comments, range queries by merge date
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prsight/prsight/internal/models"
)

// PRStore handles pull request persistence
type PRStore struct {
	db *DB
}

// NewPRStore creates a new PRStore
func NewPRStore(db *DB) *PRStore {
	return &PRStore{db: db}
}

// Save upserts a pull request together with its diff and comments in one
// transaction. Comments are replaced wholesale, not merged.
func (s *PRStore) Save(pr *models.PullRequest, diff string, comments []models.PRComment) error {
	labelsJSON, err := json.Marshal(pr.Labels)
	if err != nil {
		return fmt.Errorf("marshaling labels: %w", err)
	}

	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO pull_requests (number, title, body, author, state, labels,
			additions, deletions, changed_files, base_branch, head_branch, created_at, merged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			author = excluded.author,
			state = excluded.state,
			labels = excluded.labels,
			additions = excluded.additions,
			deletions = excluded.deletions,
			changed_files = excluded.changed_files,
			base_branch = excluded.base_branch,
			head_branch = excluded.head_branch,
			created_at = excluded.created_at,
			merged_at = excluded.merged_at,
			fetched_at = CURRENT_TIMESTAMP
	`, pr.Number, pr.Title, pr.Body, pr.Author, pr.State, string(labelsJSON),
		pr.Additions, pr.Deletions, pr.ChangedFiles, pr.BaseBranch, pr.HeadBranch,
		pr.CreatedAt, pr.MergedAt)
	if err != nil {
		return fmt.Errorf("upserting pull request #%d: %w", pr.Number, err)
	}

	_, err = tx.Exec(`
		INSERT INTO pr_diffs (pr_number, diff, byte_length)
		VALUES (?, ?, ?)
		ON CONFLICT(pr_number) DO UPDATE SET
			diff = excluded.diff,
			byte_length = excluded.byte_length
	`, pr.Number, diff, len(diff))
	if err != nil {
		return fmt.Errorf("upserting diff for #%d: %w", pr.Number, err)
	}

	if _, err := tx.Exec(`DELETE FROM pr_comments WHERE pr_number = ?`, pr.Number); err != nil {
		return fmt.Errorf("clearing comments for #%d: %w", pr.Number, err)
	}
	for _, c := range comments {
		_, err := tx.Exec(`
			INSERT INTO pr_comments (id, pr_number, author, body, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, pr.Number, c.Author, c.Body, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting comment %d for #%d: %w", c.ID, pr.Number, err)
		}
	}

	return tx.Commit()
}

// Get retrieves one pull request, or nil if it is not stored.
func (s *PRStore) Get(number int64) (*models.PullRequest, error) {
	row := s.db.QueryRow(`
		SELECT number, title, body, author, state, labels,
			additions, deletions, changed_files, base_branch, head_branch, created_at, merged_at
		FROM pull_requests
		WHERE number = ?
	`, number)

	pr, err := scanPR(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pull request #%d: %w", number, err)
	}
	return pr, nil
}

// GetDiff returns the stored diff text for a pull request, empty if absent.
func (s *PRStore) GetDiff(number int64) (string, error) {
	var diff string
	err := s.db.QueryRow(`SELECT diff FROM pr_diffs WHERE pr_number = ?`, number).Scan(&diff)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting diff for #%d: %w", number, err)
	}
	return diff, nil
}

// GetComments returns stored comments for a pull request, oldest first.
func (s *PRStore) GetComments(number int64) ([]models.PRComment, error) {
	rows, err := s.db.Query(`
		SELECT id, author, body, created_at
		FROM pr_comments
		WHERE pr_number = ?
		ORDER BY created_at ASC
	`, number)
	if err != nil {
		return nil, fmt.Errorf("querying comments for #%d: %w", number, err)
	}
	defer rows.Close()

	var comments []models.PRComment
	for rows.Next() {
		var c models.PRComment
		if err := rows.Scan(&c.ID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListMergedBetween returns pull requests merged in [from, to), oldest first.
func (s *PRStore) ListMergedBetween(from, to time.Time) ([]models.PullRequest, error) {
	rows, err := s.db.Query(`
		SELECT number, title, body, author, state, labels,
			additions, deletions, changed_files, base_branch, head_branch, created_at, merged_at
		FROM pull_requests
		WHERE merged_at IS NOT NULL AND merged_at >= ? AND merged_at < ?
		ORDER BY merged_at ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying merged range: %w", err)
	}
	defer rows.Close()

	var prs []models.PullRequest
	for rows.Next() {
		pr, err := scanPR(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pull request: %w", err)
		}
		prs = append(prs, *pr)
	}
	return prs, rows.Err()
}

// Delete removes a pull request and, via cascade, its diff and comments.
func (s *PRStore) Delete(number int64) error {
	_, err := s.db.Exec(`DELETE FROM pull_requests WHERE number = ?`, number)
	if err != nil {
		return fmt.Errorf("deleting pull request #%d: %w", number, err)
	}
	return nil
}

// Count returns the number of stored pull requests.
func (s *PRStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pull_requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pull requests: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPR(row scanner) (*models.PullRequest, error) {
	var (
		pr         models.PullRequest
		body       sql.NullString
		labelsJSON sql.NullString
		mergedAt   sql.NullTime
	)
	err := row.Scan(&pr.Number, &pr.Title, &body, &pr.Author, &pr.State, &labelsJSON,
		&pr.Additions, &pr.Deletions, &pr.ChangedFiles, &pr.BaseBranch, &pr.HeadBranch,
		&pr.CreatedAt, &mergedAt)
	if err != nil {
		return nil, err
	}
	pr.Body = body.String
	if labelsJSON.Valid && labelsJSON.String != "" {
		if err := json.Unmarshal([]byte(labelsJSON.String), &pr.Labels); err != nil {
			return nil, fmt.Errorf("unmarshaling labels: %w", err)
		}
	}
	if mergedAt.Valid {
		t := mergedAt.Time
		pr.MergedAt = &t
	}
	return &pr, nil
}
