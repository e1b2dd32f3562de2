// Package index builds and queries one tenant's retrieval index. Every
// index owns its chunks, its lexical model and its dense vectors alone;
// nothing in this package ever reads another tenant's data.
package index

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/chunker"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/embeddings"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/index/tfidf"
)

// DefaultTopK is the number of hits returned when the caller does not ask
// for a specific count.
const DefaultTopK = 3

// DefaultInclude matches the plain-text documents a tenant directory holds.
var DefaultInclude = []string{"*.txt"}

// Mode describes how an index answers queries.
type Mode string

const (
	// ModeEmpty means the tenant has no indexable content.
	ModeEmpty Mode = "empty"
	// ModeSparse means queries rank against the tf-idf model.
	ModeSparse Mode = "sparse"
	// ModeDense means queries rank against embedding vectors, with the
	// tf-idf model kept as a standing fallback.
	ModeDense Mode = "dense"
)

// BuildOptions configures index construction.
type BuildOptions struct {
	// Splitter chunks document text. Required.
	Splitter *chunker.Splitter
	// Embedder enables dense mode when available. May be nil.
	Embedder embeddings.Provider
	// Include filters document filenames; DefaultInclude when empty.
	Include []string
}

// TenantIndex owns one tenant's chunks plus the models that rank them.
// It is immutable after Build, so a pointer to it is a consistent snapshot
// that may be shared across goroutines.
type TenantIndex struct {
	tenantID string
	chunks   []Chunk
	model    *tfidf.Model           // nil iff the index is empty
	vectors  map[ChunkKey][]float32 // dense side table, may be sparse-populated
	dense    bool
	embedder embeddings.Provider
}

// Build constructs the index for tenantID from the documents in dir.
// Documents are read in lexicographic filename order and chunked with
// sequential ids starting at 0 per document, so identical directory
// contents always produce an identical index.
//
// The lexical model is always fitted when chunks exist. A dense vector
// table is attached on top when the embedding provider is reachable; any
// embedding failure degrades to lexical-only, never to a build error.
func Build(ctx context.Context, tenantID, dir string, opts BuildOptions) (*TenantIndex, error) {
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	docs, err := listDocuments(dir, include)
	if err != nil {
		return nil, err
	}

	idx := &TenantIndex{
		tenantID: tenantID,
		vectors:  make(map[ChunkKey][]float32),
		embedder: opts.Embedder,
	}

	var texts []string
	for _, doc := range docs {
		for i, part := range opts.Splitter.Split(doc.text) {
			if part == "" {
				// Empty document, nothing to index.
				continue
			}
			idx.chunks = append(idx.chunks, Chunk{
				TenantID: tenantID,
				DocID:    doc.id,
				ChunkID:  i,
				Text:     part,
			})
			texts = append(texts, part)
		}
	}

	if len(idx.chunks) == 0 {
		return idx, nil
	}

	// The sparse model is fitted unconditionally so dense-mode query
	// failures always have a lexical fallback.
	idx.model = tfidf.Fit(texts)

	if opts.Embedder != nil && opts.Embedder.IsAvailable(ctx) {
		vecs, err := opts.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			log.Printf("index %s: embedding attempt failed, lexical only: %v", tenantID, err)
			return idx, nil
		}
		attached := 0
		for i, vec := range vecs {
			if vec == nil {
				continue
			}
			idx.vectors[idx.chunks[i].Key()] = vec
			attached++
		}
		if attached > 0 {
			idx.dense = true
			log.Printf("index %s: %d/%d chunk embeddings attached", tenantID, attached, len(texts))
		}
	}

	return idx, nil
}

// TenantID returns the owning tenant.
func (t *TenantIndex) TenantID() string { return t.tenantID }

// Len returns the number of indexed chunks.
func (t *TenantIndex) Len() int { return len(t.chunks) }

// DocCount returns the number of distinct documents.
func (t *TenantIndex) DocCount() int {
	seen := make(map[string]struct{})
	for _, c := range t.chunks {
		seen[c.DocID] = struct{}{}
	}
	return len(seen)
}

// Mode reports how this index answers queries.
func (t *TenantIndex) Mode() Mode {
	switch {
	case len(t.chunks) == 0:
		return ModeEmpty
	case t.dense:
		return ModeDense
	default:
		return ModeSparse
	}
}

// Search ranks the tenant's chunks against query and returns up to topK
// hits ordered by descending score, strictly positive scores only. A blank
// query returns no hits without touching any provider. In dense mode a
// failed query embedding falls back to the lexical model.
func (t *TenantIndex) Search(ctx context.Context, query string, topK int) []SearchHit {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if strings.TrimSpace(query) == "" || len(t.chunks) == 0 {
		return nil
	}

	if t.dense {
		if hits, ok := t.searchDense(ctx, query, topK); ok {
			return hits
		}
		log.Printf("index %s: query embedding failed, lexical fallback", t.tenantID)
	}
	return t.searchSparse(query, topK)
}

func (t *TenantIndex) searchDense(ctx context.Context, query string, topK int) ([]SearchHit, bool) {
	queryVec, err := t.embedder.EmbedText(ctx, query)
	if err != nil || len(queryVec) == 0 {
		return nil, false
	}

	scores := make([]float64, len(t.chunks))
	for i, c := range t.chunks {
		vec, ok := t.vectors[c.Key()]
		if !ok {
			continue // missing vector scores 0
		}
		scores[i] = embeddings.CosineSimilarity(queryVec, vec)
	}
	return t.rank(scores, topK), true
}

func (t *TenantIndex) searchSparse(query string, topK int) []SearchHit {
	if t.model == nil {
		return nil
	}
	return t.rank(t.model.Scores(t.model.Transform(query)), topK)
}

// rank orders chunk indices by descending score, ties kept in original
// chunk order, and keeps the topK strictly positive entries.
func (t *TenantIndex) rank(scores []float64, topK int) []SearchHit {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var hits []SearchHit
	for _, i := range order {
		if len(hits) == topK {
			break
		}
		if scores[i] <= 0 {
			break // scores are sorted, nothing positive remains
		}
		hits = append(hits, SearchHit{Chunk: t.chunks[i], Score: scores[i]})
	}
	return hits
}
