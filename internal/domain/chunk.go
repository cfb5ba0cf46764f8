package domain

import "time"

// DocumentChunk is an ordered, size-bounded segment of a document's extracted text.
// Index defines the canonical ordering; concatenating all chunks of a document in
// index order reconstructs the original text modulo boundary whitespace.
type DocumentChunk struct {
	Index int
	Text  string
}

// ByteSize returns the UTF-8 encoded size of the chunk text, used for
// payload-guard checks against the embedding provider's request ceiling.
func (c DocumentChunk) ByteSize() int {
	return len(c.Text)
}

// ChunkEmbedding pairs a chunk with its vector representation. Vector
// dimensionality is constant for all chunks produced under one provider
// configuration.
type ChunkEmbedding struct {
	Index  int
	Chunk  string
	Vector []float32
}

// EmbeddingRecord is the persisted form of a ChunkEmbedding, keyed by
// (DocumentID, ChunkIndex). The chunk text is stored alongside the vector so
// future queries never need to re-derive it from the source document.
type EmbeddingRecord struct {
	DocumentID string
	ChunkIndex int
	ChunkText  string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredChunk is a transient pairing of a chunk embedding with its cosine
// similarity against a query vector, used only during ranking.
type ScoredChunk struct {
	Index int
	Chunk string
	Score float64
}
