package contract

import (
	"context"

	"ops-assistant-be/internal/entity"
	"ops-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a DocumentChunk with its cosine similarity score
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocId(ctx context.Context, docId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs a pgvector cosine search restricted to a
	// document set, returning chunks whose similarity clears the threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, docIds []uuid.UUID, threshold float64) ([]*ScoredChunk, error)
}
