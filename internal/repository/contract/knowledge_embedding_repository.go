package contract

import (
	"context"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/pkg/retrieval"
)

type KnowledgeEmbeddingRepository interface {
	// Upsert replaces any existing embedding for the same item.
	Upsert(ctx context.Context, embedding *entity.KnowledgeEmbedding) error
	DeleteByItemId(ctx context.Context, itemId int64) error
	All(ctx context.Context) ([]*entity.KnowledgeEmbedding, error)
	// SearchNearest returns the topK items by ascending cosine distance.
	SearchNearest(ctx context.Context, vector []float32, topK int) ([]retrieval.Hit, error)
}
