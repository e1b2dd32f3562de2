// Package embeddings abstracts external semantic vectorization services.
package embeddings

import (
	"context"
	"math"
)

// Provider defines the interface for embedding providers.
type Provider interface {
	// IsAvailable probes the provider with a short timeout. Indexing and
	// query paths degrade to lexical search when it reports false.
	IsAvailable(ctx context.Context) bool

	// EmbedText generates an embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for texts, order-preserving and
	// one-to-one with the input. A failed individual embedding yields a
	// nil entry; only a whole-attempt failure returns an error.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// CosineSimilarity computes dot(a,b)/(|a|*|b|). It returns 0 when either
// vector has zero norm or the dimensions disagree.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
