// Package answer turns ranked search hits into a final answer through a
// generate-then-fallback chain, after confidence gating.
package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/index"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/llm"
)

// DefaultMinScore is the confidence threshold below which hits are
// discarded before synthesis.
const DefaultMinScore = 0.12

// extractiveHeader opens every literal answer. The product answers in
// French.
const extractiveHeader = "Extraits pertinents trouvés dans vos documents :"

// Gate drops hits scoring below minScore. An empty result means "no
// answer" and is a first-class outcome, not an error.
func Gate(hits []index.SearchHit, minScore float64) []index.SearchHit {
	var kept []index.SearchHit
	for _, h := range hits {
		if h.Score >= minScore {
			kept = append(kept, h)
		}
	}
	return kept
}

// Synthesizer produces answers from gated hits. A nil provider always
// yields extractive answers.
type Synthesizer struct {
	provider llm.Provider
}

// NewSynthesizer creates a Synthesizer backed by the given LLM provider,
// which may be nil.
func NewSynthesizer(provider llm.Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize turns at least one gated hit into an answer. It returns the
// answer text and whether generation produced it. Generation failures are
// never surfaced; they fall back to the extractive answer.
func (s *Synthesizer) Synthesize(ctx context.Context, hits []index.SearchHit, question string) (string, bool) {
	if len(hits) == 0 {
		return "", false
	}

	if s.provider == nil || !s.provider.IsAvailable(ctx) {
		return Extractive(hits), false
	}

	contextChunks := make([]string, len(hits))
	for i, h := range hits {
		contextChunks[i] = h.Chunk.Text
	}

	generated, err := llm.BuildRAGAnswer(ctx, s.provider, question, contextChunks)
	if err != nil {
		log.Printf("answer: generation failed, extractive fallback: %v", err)
		return Extractive(hits), false
	}
	if generated == "" {
		return Extractive(hits), false
	}
	return generated, true
}

// Extractive builds the literal answer: the fixed header followed by each
// hit's chunk text tagged with its source, in ranking order. No
// paraphrasing, no omission, no reordering.
func Extractive(hits []index.SearchHit) string {
	if len(hits) == 0 {
		return ""
	}
	lines := make([]string, 0, len(hits)+1)
	lines = append(lines, extractiveHeader)
	for _, h := range hits {
		lines = append(lines, fmt.Sprintf("- (%s | chunk %d) %s", h.Chunk.DocID, h.Chunk.ChunkID, h.Chunk.Text))
	}
	return strings.Join(lines, "\n")
}
