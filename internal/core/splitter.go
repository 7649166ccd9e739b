// ABOUTME: ChunkSplitter turns large diffs and analysis prose into bounded chunks
// ABOUTME: File-scoped splitting for diffs, priority-boundary splitting with overlap for prose
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prsight/prsight/internal/models"
)

// ErrConfiguration is returned for invalid splitter parameters.
// It is never retried.
var ErrConfiguration = errors.New("invalid splitter configuration")

// fileHeader introduces one per-file section of a unified diff.
const fileHeader = "diff --git "

// proseSeparators are tried in priority order when cutting analysis text:
// paragraph break, sentence break, single newline, whitespace. If none
// lands inside the allowed window the chunk is hard-cut.
var proseSeparators = []string{"\n\n", ". ", "\n", " "}

type piece struct {
	text     string
	boundary models.Boundary
}

// SplitDiff splits a unified diff into chunks that never break a per-file
// section, unless a single section alone exceeds maxChunkSize. Sections are
// accumulated greedily in original order; a section that fits exactly is
// included. Concatenating all chunk texts reproduces the input exactly.
func SplitDiff(diffText string, maxChunkSize int) ([]models.Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", ErrConfiguration, maxChunkSize)
	}
	if diffText == "" {
		return nil, nil
	}

	var pieces []piece
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, piece{current.String(), models.BoundaryFile})
			current.Reset()
		}
	}

	for _, section := range splitFileSections(diffText) {
		if len(section) > maxChunkSize {
			// Oversized file: close the running chunk, then cut the
			// section at line boundaries with no overlap.
			flush()
			for _, part := range splitAtLines(section, maxChunkSize) {
				pieces = append(pieces, piece{part, models.BoundaryForcedSplit})
			}
			continue
		}
		if current.Len()+len(section) > maxChunkSize {
			flush()
		}
		current.WriteString(section)
	}
	flush()

	return sealChunks(pieces), nil
}

// SplitProse splits analysis text into chunks of at most maxChunkSize bytes,
// preferring higher-priority boundaries, with overlapSize bytes of trailing
// context copied into the head of each following chunk.
func SplitProse(text string, maxChunkSize, overlapSize int) ([]models.Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", ErrConfiguration, maxChunkSize)
	}
	if overlapSize < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrConfiguration, overlapSize)
	}
	if maxChunkSize <= overlapSize {
		return nil, fmt.Errorf("%w: max chunk size %d must exceed overlap %d", ErrConfiguration, maxChunkSize, overlapSize)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var pieces []piece
	start := 0
	for start < len(text) {
		if len(text)-start <= maxChunkSize {
			pieces = append(pieces, piece{text[start:], models.BoundaryParagraph})
			break
		}

		end := start + maxChunkSize
		cut, boundary := findProseCut(text, start, end, overlapSize)
		pieces = append(pieces, piece{text[start:cut], boundary})
		// The next chunk re-reads the tail of this one as context.
		start = cut - overlapSize
	}

	return sealChunks(pieces), nil
}

// findProseCut picks the end of the chunk starting at start. The cut must
// land after start+overlap so the next chunk makes forward progress.
func findProseCut(text string, start, end, overlap int) (int, models.Boundary) {
	window := text[start:end]
	for _, sep := range proseSeparators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + idx + len(sep)
		if cut > start+overlap {
			return cut, models.BoundaryParagraph
		}
	}
	return end, models.BoundaryForcedSplit
}

// splitFileSections splits a diff into per-file sections, each retaining its
// header line. Any preamble before the first header becomes its own section.
func splitFileSections(diffText string) []string {
	parts := strings.Split(diffText, fileHeader)
	if len(parts) == 1 {
		return []string{diffText}
	}

	var sections []string
	if parts[0] != "" {
		sections = append(sections, parts[0])
	}
	for _, part := range parts[1:] {
		sections = append(sections, fileHeader+part)
	}
	return sections
}

// splitAtLines cuts an oversized section into pieces of at most maxChunkSize
// bytes, preferring the last newline inside each window.
func splitAtLines(section string, maxChunkSize int) []string {
	var parts []string
	rest := section
	for len(rest) > maxChunkSize {
		cut := strings.LastIndexByte(rest[:maxChunkSize], '\n')
		if cut <= 0 {
			cut = maxChunkSize
		} else {
			cut++ // keep the newline with the leading piece
		}
		parts = append(parts, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

// sealChunks stamps ordering metadata onto the final pieces.
func sealChunks(pieces []piece) []models.Chunk {
	if len(pieces) == 0 {
		return nil
	}
	chunks := make([]models.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = models.Chunk{
			Index:      i,
			Total:      len(pieces),
			Text:       p.text,
			Boundary:   p.boundary,
			ByteLength: len(p.text),
		}
	}
	return chunks
}
