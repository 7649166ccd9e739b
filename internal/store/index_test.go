// ABOUTME: Tests for the directory-backed index
// ABOUTME: Verifies upsert-overwrite, filter fields, and delete semantics
package store

import (
	"testing"
	"time"

	"github.com/prsight/prsight/internal/models"
)

func testRecord(entityID int64, chunkIndex int) models.DocumentRecord {
	return models.DocumentRecord{
		ChunkID:     models.DocumentChunkID(entityID, chunkIndex),
		EntityID:    entityID,
		Title:       "test record",
		AnalyzedAt:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		SourceTag:   "llm_analysis",
		ChunkIndex:  chunkIndex,
		TotalChunks: 1,
		Text:        "record body",
	}
}

func TestIndex_UpsertOverwritesSameID(t *testing.T) {
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("OpenIndex() error = %v", err)
	}

	rec := testRecord(5, 0)
	if err := ix.Upsert(rec.ChunkID, []float64{1, 0}, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec.Title = "updated title"
	if err := ix.Upsert(rec.ChunkID, []float64{0, 1}, rec); err != nil {
		t.Fatalf("Upsert() second error = %v", err)
	}

	records, entities, err := ix.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if records != 1 || entities != 1 {
		t.Errorf("Count() = %d/%d, want 1/1", records, entities)
	}

	stored, err := ix.List(nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if stored[0].Title != "updated title" {
		t.Errorf("Title = %q, want the overwritten value", stored[0].Title)
	}
}

func TestIndex_QueryRanksAndTruncates(t *testing.T) {
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("OpenIndex() error = %v", err)
	}

	vectors := [][]float64{{1, 0}, {0.9, 0.1}, {0, 1}}
	for i, v := range vectors {
		rec := testRecord(int64(i+1), 0)
		if err := ix.Upsert(rec.ChunkID, v, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	results, err := ix.Query([]float64{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Record.EntityID != 1 {
		t.Errorf("top result EntityID = %d, want 1", results[0].Record.EntityID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not ranked by descending score")
	}
}

func TestIndex_FilterFields(t *testing.T) {
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("OpenIndex() error = %v", err)
	}

	a := testRecord(1, 0)
	a.Author = "alice"
	a.Labels = []string{"bug", "urgent"}
	b := testRecord(2, 0)
	b.Author = "bob"
	b.SourceTag = "manual"
	for _, rec := range []models.DocumentRecord{a, b} {
		if err := ix.Upsert(rec.ChunkID, []float64{1, 1}, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	entity := int64(1)
	tests := []struct {
		name   string
		filter *Filter
		want   []int64
	}{
		{"nil filter matches all", nil, []int64{1, 2}},
		{"by entity", &Filter{EntityID: &entity}, []int64{1}},
		{"by author", &Filter{Author: "bob"}, []int64{2}},
		{"by label", &Filter{Label: "urgent"}, []int64{1}},
		{"by source tag", &Filter{SourceTag: "manual"}, []int64{2}},
		{"no match", &Filter{Author: "carol"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ix.List(tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(records) != len(tt.want) {
				t.Fatalf("records = %d, want %d", len(records), len(tt.want))
			}
			for i, id := range tt.want {
				if records[i].EntityID != id {
					t.Errorf("record %d EntityID = %d, want %d", i, records[i].EntityID, id)
				}
			}
		})
	}
}

func TestIndex_DeleteByFilter(t *testing.T) {
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("OpenIndex() error = %v", err)
	}

	for entity := int64(1); entity <= 3; entity++ {
		for chunk := 0; chunk < 2; chunk++ {
			rec := testRecord(entity, chunk)
			if err := ix.Upsert(rec.ChunkID, []float64{1}, rec); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
		}
	}

	entity := int64(2)
	removed, err := ix.Delete(&Filter{EntityID: &entity})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	records, entities, err := ix.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if records != 4 || entities != 2 {
		t.Errorf("Count() = %d/%d, want 4/2", records, entities)
	}
}
