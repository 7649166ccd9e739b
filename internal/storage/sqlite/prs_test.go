// ABOUTME: Tests for pull request storage operations
// ABOUTME: Verifies transactional upsert, range queries, and cascade delete
package sqlite

import (
	"testing"
	"time"

	"github.com/prsight/prsight/internal/models"
)

func testPR(number int64, mergedAt time.Time) *models.PullRequest {
	return &models.PullRequest{
		Number:       number,
		Title:        "Fix flaky shutdown",
		Body:         "Waits for in-flight work before closing.",
		Author:       "jdoe",
		State:        "closed",
		Labels:       []string{"bug", "runtime"},
		Additions:    50,
		Deletions:    12,
		ChangedFiles: 2,
		BaseBranch:   "main",
		HeadBranch:   "fix/shutdown",
		CreatedAt:    mergedAt.Add(-48 * time.Hour),
		MergedAt:     &mergedAt,
	}
}

func TestPRStore_SaveAndGet(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPRStore(db)
	merged := time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)
	pr := testPR(101, merged)
	diff := "diff --git a/main.go b/main.go\n+fix\n"
	comments := []models.PRComment{
		{ID: 1, Author: "reviewer", Body: "Looks good.", CreatedAt: merged.Add(-time.Hour)},
		{ID: 2, Author: "jdoe", Body: "Thanks!", CreatedAt: merged.Add(-30 * time.Minute)},
	}

	if err := store.Save(pr, diff, comments); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(101)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Title != pr.Title || got.Author != "jdoe" {
		t.Errorf("got = %+v", got)
	}
	if len(got.Labels) != 2 || got.Labels[0] != "bug" {
		t.Errorf("Labels = %v", got.Labels)
	}
	if got.MergedAt == nil || !got.MergedAt.Equal(merged) {
		t.Errorf("MergedAt = %v", got.MergedAt)
	}

	gotDiff, err := store.GetDiff(101)
	if err != nil {
		t.Fatalf("GetDiff() error = %v", err)
	}
	if gotDiff != diff {
		t.Errorf("diff = %q", gotDiff)
	}

	gotComments, err := store.GetComments(101)
	if err != nil {
		t.Fatalf("GetComments() error = %v", err)
	}
	if len(gotComments) != 2 {
		t.Fatalf("comments = %d, want 2", len(gotComments))
	}
	if gotComments[0].Author != "reviewer" {
		t.Errorf("first comment = %+v", gotComments[0])
	}
}

func TestPRStore_GetMissing(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPRStore(db)

	pr, err := store.Get(999)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pr != nil {
		t.Errorf("Get() = %+v, want nil for missing PR", pr)
	}

	diff, err := store.GetDiff(999)
	if err != nil {
		t.Fatalf("GetDiff() error = %v", err)
	}
	if diff != "" {
		t.Errorf("GetDiff() = %q, want empty", diff)
	}
}

func TestPRStore_SaveReplacesComments(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPRStore(db)
	merged := time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)
	pr := testPR(101, merged)

	first := []models.PRComment{{ID: 1, Author: "a", Body: "old", CreatedAt: merged}}
	if err := store.Save(pr, "diff", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := []models.PRComment{
		{ID: 2, Author: "b", Body: "new", CreatedAt: merged},
		{ID: 3, Author: "c", Body: "newer", CreatedAt: merged.Add(time.Minute)},
	}
	if err := store.Save(pr, "diff v2", second); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	comments, err := store.GetComments(101)
	if err != nil {
		t.Fatalf("GetComments() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2 (replaced, not merged)", len(comments))
	}
	if comments[0].Body != "new" {
		t.Errorf("comment = %+v", comments[0])
	}

	diff, err := store.GetDiff(101)
	if err != nil {
		t.Fatalf("GetDiff() error = %v", err)
	}
	if diff != "diff v2" {
		t.Errorf("diff = %q, want updated value", diff)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after upsert", count)
	}
}

func TestPRStore_ListMergedBetween(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPRStore(db)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 4; i++ {
		merged := base.AddDate(0, 0, int(i))
		if err := store.Save(testPR(i, merged), "diff", nil); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	// One unmerged PR must never appear in range queries.
	open := testPR(5, base)
	open.MergedAt = nil
	open.State = "open"
	if err := store.Save(open, "diff", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	prs, err := store.ListMergedBetween(base.AddDate(0, 0, 2), base.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("ListMergedBetween() error = %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("prs = %d, want 2", len(prs))
	}
	if prs[0].Number != 2 || prs[1].Number != 3 {
		t.Errorf("numbers = %d, %d, want 2, 3", prs[0].Number, prs[1].Number)
	}
}

func TestPRStore_DeleteCascades(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPRStore(db)
	merged := time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)
	comments := []models.PRComment{{ID: 1, Author: "a", Body: "c", CreatedAt: merged}}
	if err := store.Save(testPR(101, merged), "diff", comments); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Delete(101); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	pr, err := store.Get(101)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pr != nil {
		t.Error("PR still present after delete")
	}

	diff, err := store.GetDiff(101)
	if err != nil {
		t.Fatalf("GetDiff() error = %v", err)
	}
	if diff != "" {
		t.Error("diff survived cascade delete")
	}

	gotComments, err := store.GetComments(101)
	if err != nil {
		t.Fatalf("GetComments() error = %v", err)
	}
	if len(gotComments) != 0 {
		t.Error("comments survived cascade delete")
	}
}
