// ABOUTME: Prompt construction for the analysis conversation
// ABOUTME: Info turn with PR metadata, fixed multi-dimension analysis request
package analyzer

import (
	"fmt"
	"strings"

	"github.com/prsight/prsight/internal/models"
)

// SystemPrompt frames the whole conversation before any turn is sent.
const SystemPrompt = `You are a senior engineer assessing merged pull requests for downstream consumers of this codebase. You will first receive the pull request metadata, then its diff in one or more parts. Acknowledge each part briefly and do not analyze anything until explicitly asked.`

// AnalysisRequest is the fixed final turn. Its dimensions are stable so
// downstream consumers can rely on the section structure.
const AnalysisRequest = `All parts of the diff have been delivered. Produce a structured analysis of this pull request covering:

1. Problem solved: what concrete defect or gap does this change address?
2. Failure modes without the fix: how would a system misbehave running code without this change?
3. Error signatures: log messages, error strings, or symptoms an operator would observe.
4. Stability and performance impact: what does the change mean for reliability and throughput?
5. Workarounds: can the problem be mitigated without upgrading, and how?
6. Upgrade priority: critical, recommended, or optional, with a one-line justification.

Base every statement on the metadata, comments, and diff you received.`

// maxCommentsInInfo bounds the info turn so one heavily discussed PR
// cannot blow the first turn's size.
const maxCommentsInInfo = 20

// BuildInfoTurn renders the metadata-only first turn. The diff is sent
// separately so this fixed-cost context is transmitted exactly once.
func BuildInfoTurn(pr *models.PullRequest, comments []models.PRComment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pull request #%d: %s\n\n", pr.Number, pr.Title)
	fmt.Fprintf(&b, "Author: %s\n", pr.Author)
	fmt.Fprintf(&b, "Branches: %s <- %s\n", pr.BaseBranch, pr.HeadBranch)
	fmt.Fprintf(&b, "Created: %s\n", pr.CreatedAt.Format("2006-01-02"))
	if pr.MergedAt != nil {
		fmt.Fprintf(&b, "Merged: %s\n", pr.MergedAt.Format("2006-01-02"))
	}
	if len(pr.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(pr.Labels, ", "))
	}
	fmt.Fprintf(&b, "Changes: +%d/-%d across %d files\n", pr.Additions, pr.Deletions, pr.ChangedFiles)

	if strings.TrimSpace(pr.Body) != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", strings.TrimSpace(pr.Body))
	}

	if len(comments) > 0 {
		b.WriteString("\nReview comments:\n")
		shown := comments
		if len(shown) > maxCommentsInInfo {
			shown = shown[:maxCommentsInInfo]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "- %s: %s\n", c.Author, strings.TrimSpace(c.Body))
		}
		if len(comments) > maxCommentsInInfo {
			fmt.Fprintf(&b, "(%d further comments omitted)\n", len(comments)-maxCommentsInInfo)
		}
	}

	b.WriteString("\nThe diff follows in the next turns. Acknowledge and wait.")
	return b.String()
}

// FormatIndexedText is the text actually indexed for retrieval: the PR
// reference line followed by the analysis body.
func FormatIndexedText(number int64, title, analysis string) string {
	return fmt.Sprintf("PR #%d: %s\n\n%s", number, title, analysis)
}
