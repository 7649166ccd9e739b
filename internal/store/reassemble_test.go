// ABOUTME: Tests for text reassembly from overlapping chunk records
package store

import (
	"fmt"
	"testing"

	"github.com/prsight/prsight/internal/models"
)

func TestReassemble_DropsOverlap(t *testing.T) {
	records := []models.DocumentRecord{
		{ChunkIndex: 0, Text: "The retry loop ignored cancellation. "},
		{ChunkIndex: 1, Text: "cancellation. The fix selects on the context. "},
		{ChunkIndex: 2, Text: "context. Upgrade is recommended."},
	}

	got := Reassemble(records)
	want := "The retry loop ignored cancellation. The fix selects on the context. Upgrade is recommended."
	if got != want {
		t.Errorf("Reassemble() = %q, want %q", got, want)
	}
}

func TestReassemble_NoOverlap(t *testing.T) {
	records := []models.DocumentRecord{
		{ChunkIndex: 0, Text: "first part"},
		{ChunkIndex: 1, Text: " second part"},
	}

	if got := Reassemble(records); got != "first part second part" {
		t.Errorf("Reassemble() = %q", got)
	}
}

func TestReassemble_SingleChunk(t *testing.T) {
	records := []models.DocumentRecord{{ChunkIndex: 0, Text: "only chunk"}}
	if got := Reassemble(records); got != "only chunk" {
		t.Errorf("Reassemble() = %q", got)
	}
}

func TestReassemble_SplitThenReassemble(t *testing.T) {
	// Reassembly inverts prose splitting for overlapped chunks.
	original := ""
	for i := 0; i < 40; i++ {
		original += fmt.Sprintf("Sentence %02d covers a distinct failure mode in detail. ", i)
	}

	rs := newTestStore(t, &hashEmbedder{}, Config{MaxChunkSize: 1000, OverlapSize: 200, DefaultK: 5})
	ids, err := rs.Add(Document{EntityID: 31, Title: "roundtrip", Text: original, SourceTag: "test"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(ids) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(ids))
	}

	records, err := rs.Fetch(31)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := Reassemble(records); got != original {
		t.Errorf("Reassemble() did not reproduce original text:\ngot  %q\nwant %q", got, original)
	}
}

func TestTrimOverlap(t *testing.T) {
	tests := []struct {
		name string
		prev string
		next string
		want string
	}{
		{"full overlap", "abcdef", "defxyz", "xyz"},
		{"no overlap", "abc", "xyz", "xyz"},
		{"next shorter than prev", "abcdefgh", "gh", ""},
		{"identical", "abc", "abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimOverlap(tt.prev, tt.next); got != tt.want {
				t.Errorf("trimOverlap(%q, %q) = %q, want %q", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}
