package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/docsage-ai/docsage/internal/domain"
)

// EmbeddingRepository persists chunk embeddings keyed by
// (document_id, chunk_index). Writes for a document happen in one transaction,
// so Exists never observes a partially written record set.
type EmbeddingRepository struct {
	pool *pgxpool.Pool
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

// Exists reports whether embeddings have been persisted for the document.
func (r *EmbeddingRepository) Exists(ctx context.Context, documentID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM document_embeddings WHERE document_id = $1)`,
		documentID,
	).Scan(&exists)
	if err != nil {
		return false, domain.NewDomainErrorWithCause(domain.ErrCodeCacheRead, "failed to check document embeddings", err)
	}
	return exists, nil
}

// GetAll returns every persisted chunk embedding for the document, ordered by
// chunk index ascending.
func (r *EmbeddingRepository) GetAll(ctx context.Context, documentID string) ([]domain.ChunkEmbedding, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT chunk_index, chunk_text, embedding
		 FROM document_embeddings
		 WHERE document_id = $1
		 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeCacheRead, "failed to load document embeddings", err)
	}
	defer rows.Close()

	var results []domain.ChunkEmbedding
	for rows.Next() {
		var entry domain.ChunkEmbedding
		var vec pgvector.Vector
		if err := rows.Scan(&entry.Index, &entry.Chunk, &vec); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeCacheRead, "failed to scan embedding row", err)
		}
		entry.Vector = vec.Slice()
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeCacheRead, "failed to read embedding rows", err)
	}

	return results, nil
}

// PutBatch upserts all records for a document as a unit. Either every record
// is committed or none are; re-running the batch for the same document is an
// idempotent overwrite.
func (r *EmbeddingRepository) PutBatch(ctx context.Context, documentID string, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCacheWrite, "failed to begin embedding batch", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.upsertAll(ctx, tx, documentID, records); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeCacheWrite, "failed to commit embedding batch", err)
	}
	return nil
}

func (r *EmbeddingRepository) upsertAll(ctx context.Context, tx pgx.Tx, documentID string, records []domain.EmbeddingRecord) error {
	for _, rec := range records {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO document_embeddings (document_id, chunk_index, chunk_text, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (document_id, chunk_index)
			 DO UPDATE SET chunk_text = EXCLUDED.chunk_text, embedding = EXCLUDED.embedding`,
			documentID,
			rec.ChunkIndex,
			rec.ChunkText,
			pgvector.NewVector(rec.Embedding),
			createdAt,
		)
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeCacheWrite, "failed to upsert embedding record", err)
		}
	}
	return nil
}
