// ABOUTME: DocumentRecord is the persisted unit in the retrieval index
// ABOUTME: One record per prose chunk of an indexed PR analysis
package models

import (
	"fmt"
	"time"
)

// DocumentRecord is one indexed chunk of an analysis, plus the metadata
// needed to filter and display search results without a second lookup.
type DocumentRecord struct {
	ChunkID     string     `json:"chunk_id"`
	EntityID    int64      `json:"entity_id"`
	Title       string     `json:"title"`
	AnalyzedAt  time.Time  `json:"analyzed_at"`
	SourceTag   string     `json:"source_tag"`
	ChunkIndex  int        `json:"chunk_index"`
	TotalChunks int        `json:"total_chunks"`
	Labels      []string   `json:"labels,omitempty"`
	Author      string     `json:"author,omitempty"`
	MergedAt    *time.Time `json:"merged_at,omitempty"`
	Text        string     `json:"text"`
}

// DocumentChunkID returns the deterministic record id for one chunk of an
// entity. Re-indexing the same entity overwrites the same ids.
func DocumentChunkID(entityID int64, chunkIndex int) string {
	return fmt.Sprintf("pr_%d_%d", entityID, chunkIndex)
}
