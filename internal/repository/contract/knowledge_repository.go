package contract

import (
	"context"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/repository/specification"
)

type KnowledgeRepository interface {
	// Create persists the item and assigns the next id (max existing + 1).
	Create(ctx context.Context, item *entity.KnowledgeItem) error
	// All returns the full store in insertion (id) order.
	All(ctx context.Context) ([]*entity.KnowledgeItem, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeItem, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeItem, error)
	Stats(ctx context.Context) (*entity.KnowledgeStats, error)
}
