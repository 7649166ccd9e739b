// ABOUTME: Pull request and review comment models shared across packages
// ABOUTME: Populated by the GitHub client, persisted by the sqlite store
package models

import "time"

// PullRequest holds the metadata the analysis conversation needs.
// Diff text travels separately since it can be orders of magnitude larger.
type PullRequest struct {
	Number       int64      `json:"number"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	Author       string     `json:"author"`
	State        string     `json:"state"`
	Labels       []string   `json:"labels,omitempty"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changed_files"`
	BaseBranch   string     `json:"base_branch"`
	HeadBranch   string     `json:"head_branch"`
	CreatedAt    time.Time  `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
}

// Merged reports whether the pull request has a merge timestamp.
func (pr *PullRequest) Merged() bool {
	return pr.MergedAt != nil
}

// PRComment is one human review comment on a pull request.
type PRComment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
