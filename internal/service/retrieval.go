package service

import (
	"context"
	"strings"

	"github.com/docsage-ai/docsage/internal/domain"
	"github.com/docsage-ai/docsage/internal/telemetry"
)

// EmbeddingPipelineInterface defines the pipeline dependency of the retrieval
// service.
type EmbeddingPipelineInterface interface {
	GetOrComputeEmbeddings(ctx context.Context, documentID, rawText string) ([]domain.ChunkEmbedding, error)
}

// RetrievalConfig controls ranking and selection for retrieval requests.
type RetrievalConfig struct {
	Ranker RankerConfig
}

// DefaultRetrievalConfig returns the default retrieval configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{Ranker: DefaultRankerConfig()}
}

// RetrievalService builds the bounded context window for a document and a set
// of questions: embeddings via the pipeline, a fresh query embedding, cosine
// ranking, then assembly. The same embedding client instance serves document
// chunks and queries, so both sides of every comparison share one provider
// configuration.
type RetrievalService struct {
	pipeline  EmbeddingPipelineInterface
	embedder  EmbeddingClient
	assembler *ContextAssembler
	cfg       RetrievalConfig
}

// NewRetrievalService creates a RetrievalService with default configuration.
func NewRetrievalService(pipeline EmbeddingPipelineInterface, embedder EmbeddingClient) *RetrievalService {
	return NewRetrievalServiceWithConfig(pipeline, embedder, NewContextAssembler(), DefaultRetrievalConfig())
}

// NewRetrievalServiceWithConfig creates a RetrievalService with explicit
// assembler and configuration.
func NewRetrievalServiceWithConfig(
	pipeline EmbeddingPipelineInterface,
	embedder EmbeddingClient,
	assembler *ContextAssembler,
	cfg RetrievalConfig,
) *RetrievalService {
	if assembler == nil {
		assembler = NewContextAssembler()
	}
	return &RetrievalService{
		pipeline:  pipeline,
		embedder:  embedder,
		assembler: assembler,
		cfg:       cfg,
	}
}

// BuildContext returns the assembled context window for the document and
// questions. All questions are concatenated into one combined query and
// embedded with a single provider call; query embeddings are never cached.
func (s *RetrievalService) BuildContext(ctx context.Context, documentID, rawText string, questions []string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.BuildContext", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "build_context",
	})
	defer span.End()

	if len(questions) == 0 {
		return "", domain.ErrEmptyQuestions
	}

	embeddings, err := s.pipeline.GetOrComputeEmbeddings(ctx, documentID, rawText)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	queryVector, err := s.embedder.GenerateEmbedding(ctx, CombineQuestions(questions))
	if err != nil {
		span.SetError(err)
		return "", err
	}

	selected := RankChunks(queryVector, embeddings, s.cfg.Ranker)
	return s.assembler.Assemble(selected), nil
}

// CombineQuestions joins multiple questions into the single combined query
// text used for retrieval, amortizing query embedding to one provider call.
func CombineQuestions(questions []string) string {
	trimmed := make([]string, 0, len(questions))
	for _, q := range questions {
		if s := strings.TrimSpace(q); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	return strings.Join(trimmed, "\n")
}
