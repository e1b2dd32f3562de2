// Package chunker splits document text into bounded, overlapping windows
// suitable for retrieval indexing.
package chunker

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the default chunk window length in runes.
	DefaultSize = 420
	// DefaultOverlap is the default number of runes shared between
	// consecutive chunks.
	DefaultOverlap = 80
)

// Splitter produces fixed-size overlapping chunks from normalized text.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. overlap must be strictly smaller than size,
// otherwise the sliding window cannot make forward progress.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the chunk window length.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the overlap length.
func (s *Splitter) Overlap() int { return s.overlap }

// Split normalizes whitespace and slices text into overlapping windows.
// Text no longer than the window is returned as a single chunk; an empty
// document yields one empty chunk, which callers must guard against.
func (s *Splitter) Split(text string) []string {
	normalized := Normalize(text)
	runes := []rune(normalized)
	if len(runes) <= s.size {
		return []string{normalized}
	}

	var chunks []string
	start := 0
	for {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - s.overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// Normalize collapses all whitespace runs to single spaces and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
