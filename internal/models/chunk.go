// ABOUTME: Chunk model for size-bounded slices of diffs and analysis prose
// ABOUTME: Carries ordering metadata and the boundary rule that produced the slice
package models

// Boundary identifies which splitting rule produced a chunk.
type Boundary string

const (
	// BoundaryFile marks a chunk built from whole per-file diff sections.
	BoundaryFile Boundary = "file"
	// BoundaryParagraph marks a prose chunk cut at a text boundary.
	BoundaryParagraph Boundary = "paragraph"
	// BoundaryForcedSplit marks a chunk cut mid-section because the
	// section alone exceeded the chunk budget.
	BoundaryForcedSplit Boundary = "forced-split"
)

// Chunk is one ordered, size-bounded slice of a larger text.
// Chunks are created by the splitter and never mutated afterwards.
type Chunk struct {
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	Text       string   `json:"text"`
	Boundary   Boundary `json:"boundary"`
	ByteLength int      `json:"byte_length"`
}
