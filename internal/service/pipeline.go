package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/docsage-ai/docsage/internal/domain"
	"github.com/docsage-ai/docsage/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingCache defines the persistence interface for chunk embeddings.
type EmbeddingCache interface {
	Exists(ctx context.Context, documentID string) (bool, error)
	GetAll(ctx context.Context, documentID string) ([]domain.ChunkEmbedding, error)
	PutBatch(ctx context.Context, documentID string, records []domain.EmbeddingRecord) error
}

// PipelineConfig controls chunking and embedding fan-out.
type PipelineConfig struct {
	MaxChunkBytes      int
	MaxConcurrentCalls int
	// MaxRetries is the per-chunk retry budget on provider failure. Zero keeps
	// the fail-fast contract: the first error aborts the whole document.
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxChunkBytes:      DefaultChunkConfig().MaxChunkBytes,
		MaxConcurrentCalls: 8,
		MaxRetries:         0,
		RetryBaseDelay:     500 * time.Millisecond,
	}
}

// EmbeddingPipeline orchestrates chunking, bounded-concurrency embedding, and
// the embedding cache. Results always come back in chunk-index order, no
// matter in which order the provider calls complete.
type EmbeddingPipeline struct {
	client   EmbeddingClient
	cache    EmbeddingCache
	cfg      PipelineConfig
	inflight singleflight.Group
}

// NewEmbeddingPipeline creates a pipeline with default configuration.
func NewEmbeddingPipeline(client EmbeddingClient, cache EmbeddingCache) *EmbeddingPipeline {
	return NewEmbeddingPipelineWithConfig(client, cache, DefaultPipelineConfig())
}

// NewEmbeddingPipelineWithConfig creates a pipeline with explicit configuration.
func NewEmbeddingPipelineWithConfig(client EmbeddingClient, cache EmbeddingCache, cfg PipelineConfig) *EmbeddingPipeline {
	if cfg.MaxConcurrentCalls <= 0 {
		cfg.MaxConcurrentCalls = DefaultPipelineConfig().MaxConcurrentCalls
	}
	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = DefaultChunkConfig().MaxChunkBytes
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultPipelineConfig().RetryBaseDelay
	}
	return &EmbeddingPipeline{client: client, cache: cache, cfg: cfg}
}

// GetOrComputeEmbeddings returns the ordered chunk embeddings for a document.
// Documents already in the cache are served without chunking or provider
// calls. Concurrent first-time requests for the same document identity are
// collapsed into a single embedding run.
func (p *EmbeddingPipeline) GetOrComputeEmbeddings(ctx context.Context, documentID, rawText string) ([]domain.ChunkEmbedding, error) {
	if documentID == "" {
		return nil, domain.ErrEmptyDocumentID
	}

	result, err, shared := p.inflight.Do(documentID, func() (interface{}, error) {
		return p.getOrCompute(ctx, documentID, rawText)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("embedding run for document %s was shared with a concurrent request", documentID)
	}

	return result.([]domain.ChunkEmbedding), nil
}

func (p *EmbeddingPipeline) getOrCompute(ctx context.Context, documentID, rawText string) ([]domain.ChunkEmbedding, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingPipeline.GetOrComputeEmbeddings", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "embed_document",
	})
	defer span.End()

	exists, err := p.cache.Exists(ctx, documentID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if exists {
		return p.cache.GetAll(ctx, documentID)
	}

	chunks := ChunkText(rawText, p.cfg.MaxChunkBytes)
	if len(chunks) == 0 {
		return []domain.ChunkEmbedding{}, nil
	}

	embeddings, err := p.embedChunks(ctx, chunks)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	records := make([]domain.EmbeddingRecord, len(embeddings))
	createdAt := time.Now().UTC()
	for i, e := range embeddings {
		records[i] = domain.EmbeddingRecord{
			DocumentID: documentID,
			ChunkIndex: e.Index,
			ChunkText:  e.Chunk,
			Embedding:  e.Vector,
			CreatedAt:  createdAt,
		}
	}
	if err := p.cache.PutBatch(ctx, documentID, records); err != nil {
		span.SetError(err)
		return nil, err
	}

	log.Printf("embedded document %s: %d chunks", documentID, len(embeddings))
	return embeddings, nil
}

// embedChunks fans the chunks out over at most MaxConcurrentCalls in-flight
// provider calls. Results land in an index-addressed slice, so canonical chunk
// order is preserved regardless of completion order. The first failure cancels
// the remaining calls and aborts the batch.
func (p *EmbeddingPipeline) embedChunks(ctx context.Context, chunks []domain.DocumentChunk) ([]domain.ChunkEmbedding, error) {
	results := make([]domain.ChunkEmbedding, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrentCalls)

	for _, chunk := range chunks {
		g.Go(func() error {
			vector, err := p.embedWithRetry(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.Index, err)
			}
			results[chunk.Index] = domain.ChunkEmbedding{
				Index:  chunk.Index,
				Chunk:  chunk.Text,
				Vector: vector,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// embedWithRetry retries a single chunk embedding with exponential backoff
// when a retry budget is configured. Context cancellation is never retried.
func (p *EmbeddingPipeline) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	vector, err := p.client.GenerateEmbedding(ctx, text)
	if err == nil || p.cfg.MaxRetries <= 0 {
		return vector, err
	}

	delay := p.cfg.RetryBaseDelay
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2

		vector, err = p.client.GenerateEmbedding(ctx, text)
		if err == nil {
			return vector, nil
		}
	}
	return nil, err
}
