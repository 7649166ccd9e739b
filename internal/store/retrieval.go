// ABOUTME: RetrievalStore chunks, embeds, and indexes PR analyses for semantic lookup
// ABOUTME: Atomic-per-entity add with best-effort cleanup, exact-match filtered search
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prsight/prsight/internal/core"
	"github.com/prsight/prsight/internal/models"
)

var (
	// ErrEmbedding is returned when the embedding capability fails.
	ErrEmbedding = errors.New("embedding failure")
	// ErrConfiguration is returned for invalid store parameters.
	ErrConfiguration = errors.New("invalid store configuration")
)

// Embedder converts text into an embedding vector.
type Embedder interface {
	GenerateEmbedding(text string) ([]float64, error)
}

// Config fixes the chunking geometry and search defaults for a store.
type Config struct {
	MaxChunkSize int
	OverlapSize  int
	DefaultK     int
}

// Document is the input to Add: one analysis text with its entity metadata.
type Document struct {
	EntityID   int64
	Title      string
	Text       string
	SourceTag  string
	Labels     []string
	Author     string
	AnalyzedAt time.Time
	MergedAt   *time.Time
}

// Stats is a point-in-time aggregate over the index.
type Stats struct {
	TotalDocuments int `json:"total_documents"`
	TotalEntities  int `json:"total_entities"`
}

// RetrievalStore owns the embedding and index capabilities for analyses.
type RetrievalStore struct {
	index    *Index
	embedder Embedder
	cfg      Config
}

// New creates a store over an open index and an embedder.
func New(index *Index, embedder Embedder, cfg Config) (*RetrievalStore, error) {
	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", ErrConfiguration, cfg.MaxChunkSize)
	}
	if cfg.MaxChunkSize <= cfg.OverlapSize {
		return nil, fmt.Errorf("%w: max chunk size %d must exceed overlap %d", ErrConfiguration, cfg.MaxChunkSize, cfg.OverlapSize)
	}
	if cfg.DefaultK <= 0 {
		return nil, fmt.Errorf("%w: default k must be positive, got %d", ErrConfiguration, cfg.DefaultK)
	}
	return &RetrievalStore{index: index, embedder: embedder, cfg: cfg}, nil
}

// DefaultK returns the configured default result count for searches.
func (rs *RetrievalStore) DefaultK() int {
	return rs.cfg.DefaultK
}

// Add chunks the document text, embeds each chunk, and upserts one record
// per chunk. On embedding or persistence failure it removes any records
// already written for the entity before returning, so an entity is either
// fully indexed or absent.
func (rs *RetrievalStore) Add(doc Document) ([]string, error) {
	if doc.Text == "" {
		return nil, fmt.Errorf("%w: cannot index empty text for entity %d", ErrConfiguration, doc.EntityID)
	}

	chunks, err := core.SplitProse(doc.Text, rs.cfg.MaxChunkSize, rs.cfg.OverlapSize)
	if err != nil {
		return nil, fmt.Errorf("chunking entity %d: %w", doc.EntityID, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: text for entity %d produced no chunks", ErrConfiguration, doc.EntityID)
	}

	analyzedAt := doc.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	chunkIDs := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		rec := models.DocumentRecord{
			ChunkID:     models.DocumentChunkID(doc.EntityID, chunk.Index),
			EntityID:    doc.EntityID,
			Title:       doc.Title,
			AnalyzedAt:  analyzedAt,
			SourceTag:   doc.SourceTag,
			ChunkIndex:  chunk.Index,
			TotalChunks: chunk.Total,
			Labels:      doc.Labels,
			Author:      doc.Author,
			MergedAt:    doc.MergedAt,
			Text:        chunk.Text,
		}

		vector, err := rs.embedder.GenerateEmbedding(chunk.Text)
		if err != nil {
			rs.cleanup(doc.EntityID)
			return nil, fmt.Errorf("%w: chunk %d of entity %d: %w", ErrEmbedding, chunk.Index, doc.EntityID, err)
		}

		if err := rs.index.Upsert(rec.ChunkID, vector, rec); err != nil {
			rs.cleanup(doc.EntityID)
			return nil, fmt.Errorf("indexing chunk %d of entity %d: %w", chunk.Index, doc.EntityID, err)
		}
		chunkIDs = append(chunkIDs, rec.ChunkID)
	}

	return chunkIDs, nil
}

// Search returns up to k records ranked by relevance to query, optionally
// restricted by filter.
func (rs *RetrievalStore) Search(query string, k int, filter *Filter) ([]models.DocumentRecord, error) {
	scored, err := rs.SearchWithScore(query, k, filter)
	if err != nil {
		return nil, err
	}
	records := make([]models.DocumentRecord, len(scored))
	for i, s := range scored {
		records[i] = s.Record
	}
	return records, nil
}

// SearchWithScore is Search plus the raw similarity score per record.
func (rs *RetrievalStore) SearchWithScore(query string, k int, filter *Filter) ([]ScoredRecord, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrConfiguration, k)
	}

	vector, err := rs.embedder.GenerateEmbedding(query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrEmbedding, err)
	}

	return rs.index.Query(vector, k, filter)
}

// Fetch returns every record for one entity in chunk order.
func (rs *RetrievalStore) Fetch(entityID int64) ([]models.DocumentRecord, error) {
	return rs.index.List(&Filter{EntityID: &entityID})
}

// HasEntity reports whether any record exists for the entity.
func (rs *RetrievalStore) HasEntity(entityID int64) (bool, error) {
	records, err := rs.index.List(&Filter{EntityID: &entityID})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// Delete removes every record for the entity, returning how many records
// were removed. Deleting an absent entity is a successful no-op.
func (rs *RetrievalStore) Delete(entityID int64) (int, error) {
	return rs.index.Delete(&Filter{EntityID: &entityID})
}

// Stats reports the current record and entity counts.
func (rs *RetrievalStore) Stats() (Stats, error) {
	records, entities, err := rs.index.Count()
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalDocuments: records, TotalEntities: entities}, nil
}

// cleanup removes any partially written records for the entity. Failures
// here are swallowed: the original error is what the caller needs to see.
func (rs *RetrievalStore) cleanup(entityID int64) {
	_, _ = rs.index.Delete(&Filter{EntityID: &entityID})
}

// Reassemble rebuilds one entity's text from its ordered chunk records,
// dropping each chunk's leading overlap so the shared bytes appear once.
func Reassemble(records []models.DocumentRecord) string {
	var b strings.Builder
	var prev string
	for _, rec := range records {
		text := rec.Text
		if prev != "" {
			text = trimOverlap(prev, text)
		}
		b.WriteString(text)
		prev = rec.Text
	}
	return b.String()
}

// trimOverlap strips the longest suffix of prev that prefixes next.
func trimOverlap(prev, next string) string {
	max := len(prev)
	if len(next) < max {
		max = len(next)
	}
	for n := max; n > 0; n-- {
		if prev[len(prev)-n:] == next[:n] {
			return next[n:]
		}
	}
	return next
}
