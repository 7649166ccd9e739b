// ABOUTME: GitHub REST client for merged pull requests, comments, and diffs
// ABOUTME: Token auth, pagination with merge-date cutoff, client-side rate limiting
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/prsight/prsight/internal/models"
)

const perPage = 100

// Config holds connection settings for one repository.
type Config struct {
	Token   string
	Owner   string
	Repo    string
	BaseURL string
	// RequestsPerSecond bounds outgoing calls below GitHub's secondary
	// rate limits. Zero means 2 req/s.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client talks to the GitHub REST API for a single repository.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	owner      string
	repo       string
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient creates a client for the configured repository.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log,
	}, nil
}

// prPayload is the subset of the pulls API response we consume.
type prPayload struct {
	Number int64  `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Base         struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

func (p *prPayload) toModel() models.PullRequest {
	pr := models.PullRequest{
		Number:       p.Number,
		Title:        p.Title,
		Body:         p.Body,
		Author:       p.User.Login,
		State:        p.State,
		Additions:    p.Additions,
		Deletions:    p.Deletions,
		ChangedFiles: p.ChangedFiles,
		BaseBranch:   p.Base.Ref,
		HeadBranch:   p.Head.Ref,
		CreatedAt:    p.CreatedAt,
		MergedAt:     p.MergedAt,
	}
	for _, l := range p.Labels {
		pr.Labels = append(pr.Labels, l.Name)
	}
	return pr
}

// GetPullRequest fetches full details for one pull request.
func (c *Client) GetPullRequest(ctx context.Context, number int64) (*models.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, c.owner, c.repo, number)

	var payload prPayload
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("fetching PR #%d: %w", number, err)
	}
	pr := payload.toModel()
	return &pr, nil
}

// GetDiff downloads the unified diff for one pull request.
func (c *Client) GetDiff(ctx context.Context, number int64) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, c.owner, c.repo, number)

	body, err := c.get(ctx, url, "application/vnd.github.v3.diff")
	if err != nil {
		return "", fmt.Errorf("fetching diff for PR #%d: %w", number, err)
	}
	return string(body), nil
}

// ListMergedSince returns pull requests merged at or after the cutoff,
// newest first. Pagination stops once a page of closed PRs falls entirely
// before the cutoff.
func (c *Client) ListMergedSince(ctx context.Context, since time.Time) ([]models.PullRequest, error) {
	var merged []models.PullRequest

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=closed&sort=updated&direction=desc&per_page=%d&page=%d",
			c.baseURL, c.owner, c.repo, perPage, page)

		var payloads []prPayload
		if err := c.getJSON(ctx, url, &payloads); err != nil {
			return nil, fmt.Errorf("listing merged PRs page %d: %w", page, err)
		}
		if len(payloads) == 0 {
			break
		}

		pastCutoff := true
		for _, p := range payloads {
			if p.MergedAt != nil && !p.MergedAt.Before(since) {
				merged = append(merged, p.toModel())
			}
			if p.UpdatedAt.After(since) || p.UpdatedAt.Equal(since) {
				pastCutoff = false
			}
		}
		if pastCutoff || len(payloads) < perPage {
			break
		}
	}

	c.log.Debug().Int("count", len(merged)).Time("since", since).Msg("listed merged pull requests")
	return merged, nil
}

// commentPayload is the subset of the issue comments API we consume.
type commentPayload struct {
	ID   int64 `json:"id"`
	User struct {
		Login string `json:"login"`
		Type  string `json:"type"`
	} `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ListComments returns the human comments on a pull request, oldest first.
// Bot accounts are filtered out, they add noise without review signal.
func (c *Client) ListComments(ctx context.Context, number int64) ([]models.PRComment, error) {
	var comments []models.PRComment

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=%d&page=%d",
			c.baseURL, c.owner, c.repo, number, perPage, page)

		var payloads []commentPayload
		if err := c.getJSON(ctx, url, &payloads); err != nil {
			return nil, fmt.Errorf("listing comments for PR #%d: %w", number, err)
		}
		if len(payloads) == 0 {
			break
		}

		for _, p := range payloads {
			if p.User.Type == "Bot" || strings.Contains(p.User.Login, "[bot]") {
				continue
			}
			comments = append(comments, models.PRComment{
				ID:        p.ID,
				Author:    p.User.Login,
				Body:      p.Body,
				CreatedAt: p.CreatedAt,
			})
		}
		if len(payloads) < perPage {
			break
		}
	}

	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	body, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
