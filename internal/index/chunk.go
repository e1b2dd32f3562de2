package index

// Chunk is an immutable window of a document's normalized text, the unit
// of indexing and citation. Identity is (TenantID, DocID, ChunkID).
type Chunk struct {
	TenantID string
	DocID    string
	ChunkID  int
	Text     string
}

// ChunkKey identifies a chunk. Dense vectors are stored in a side table
// keyed by ChunkKey so the Chunk value itself never changes after build.
type ChunkKey struct {
	TenantID string
	DocID    string
	ChunkID  int
}

// Key returns the chunk's identity.
func (c Chunk) Key() ChunkKey {
	return ChunkKey{TenantID: c.TenantID, DocID: c.DocID, ChunkID: c.ChunkID}
}

// SearchHit pairs a chunk with its relevance score. In sparse mode the
// score is a cosine over L2-normalized tf-idf vectors in [0, 1]; in dense
// mode it is a cosine over embedding vectors in [-1, 1]. Only strictly
// positive scores are ever returned.
type SearchHit struct {
	Chunk Chunk
	Score float64
}
