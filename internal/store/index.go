// ABOUTME: Directory-backed vector index with cosine similarity search
// ABOUTME: One JSON file per record, atomic tmp+rename writes, full-scan queries
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/prsight/prsight/internal/models"
)

// ErrPersistence is returned when the index cannot be read or written.
var ErrPersistence = errors.New("persistence failure")

// Filter restricts index operations to records whose fields equal the set
// values. Zero-valued fields are ignored. The schema is closed on purpose:
// filtering is exact-match over these named fields only.
type Filter struct {
	EntityID  *int64
	SourceTag string
	Author    string
	Label     string
}

func (f *Filter) matches(rec *models.DocumentRecord) bool {
	if f == nil {
		return true
	}
	if f.EntityID != nil && rec.EntityID != *f.EntityID {
		return false
	}
	if f.SourceTag != "" && rec.SourceTag != f.SourceTag {
		return false
	}
	if f.Author != "" && rec.Author != f.Author {
		return false
	}
	if f.Label != "" {
		found := false
		for _, l := range rec.Labels {
			if l == f.Label {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ScoredRecord pairs a record with its raw similarity score, unrounded,
// for downstream thresholding.
type ScoredRecord struct {
	Record models.DocumentRecord `json:"record"`
	Score  float64               `json:"score"`
}

// indexEntry is the on-disk format: the record plus its embedding.
type indexEntry struct {
	Record models.DocumentRecord `json:"record"`
	Vector []float64             `json:"vector"`
}

// Index is a directory of JSON record files with cosine similarity search.
// It is an explicitly constructed handle, not a process-wide singleton.
// Writes to distinct record ids are safe concurrently; callers must
// serialize conflicting writes to the same entity themselves.
type Index struct {
	dir string
	mu  sync.RWMutex
}

// OpenIndex opens (creating if needed) an index rooted at dir.
func OpenIndex(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating index directory: %w", ErrPersistence, err)
	}
	return &Index{dir: dir}, nil
}

// Dir returns the index root directory.
func (ix *Index) Dir() string {
	return ix.dir
}

// Upsert durably stores one record and its vector, replacing any previous
// record with the same id. The write is atomic via tmp file + rename.
func (ix *Index) Upsert(id string, vector []float64, rec models.DocumentRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	data, err := json.Marshal(indexEntry{Record: rec, Vector: vector})
	if err != nil {
		return fmt.Errorf("%w: marshaling record %s: %w", ErrPersistence, id, err)
	}

	final := ix.recordPath(id)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: writing record %s: %w", ErrPersistence, id, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: committing record %s: %w", ErrPersistence, id, err)
	}
	return nil
}

// Query returns up to k records matching filter, ranked by cosine
// similarity to vector in non-increasing order. Fewer than k matches is
// not an error.
func (ix *Index) Query(vector []float64, k int, filter *Filter) ([]ScoredRecord, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var results []ScoredRecord
	err := ix.scan(func(entry *indexEntry) {
		if !filter.matches(&entry.Record) {
			return
		}
		results = append(results, ScoredRecord{
			Record: entry.Record,
			Score:  cosineSimilarity(vector, entry.Vector),
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// List returns every record matching filter, ordered by entity id then
// chunk index. No similarity ranking is involved.
func (ix *Index) List(filter *Filter) ([]models.DocumentRecord, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var records []models.DocumentRecord
	err := ix.scan(func(entry *indexEntry) {
		if filter.matches(&entry.Record) {
			records = append(records, entry.Record)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].EntityID != records[j].EntityID {
			return records[i].EntityID < records[j].EntityID
		}
		return records[i].ChunkIndex < records[j].ChunkIndex
	})
	return records, nil
}

// Delete removes every record matching filter and returns how many were
// removed. A filter matching nothing is a successful no-op.
func (ix *Index) Delete(filter *Filter) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		return 0, fmt.Errorf("%w: reading index directory: %w", ErrPersistence, err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(ix.dir, e.Name())
		entry, err := readEntry(path)
		if err != nil {
			continue
		}
		if !filter.matches(&entry.Record) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("%w: removing record %s: %w", ErrPersistence, entry.Record.ChunkID, err)
		}
		removed++
	}
	return removed, nil
}

// Count returns the number of stored records and distinct entities,
// computed from the current directory state.
func (ix *Index) Count() (records, entities int, err error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[int64]bool)
	err = ix.scan(func(entry *indexEntry) {
		records++
		seen[entry.Record.EntityID] = true
	})
	if err != nil {
		return 0, 0, err
	}
	return records, len(seen), nil
}

// scan visits every readable record file. Unreadable or corrupt files are
// skipped rather than failing the whole scan.
func (ix *Index) scan(visit func(*indexEntry)) error {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		return fmt.Errorf("%w: reading index directory: %w", ErrPersistence, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		entry, err := readEntry(filepath.Join(ix.dir, e.Name()))
		if err != nil {
			continue
		}
		visit(entry)
	}
	return nil
}

func readEntry(path string) (*indexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry indexEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (ix *Index) recordPath(id string) string {
	return filepath.Join(ix.dir, id+".json")
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
