package implementation

import (
	"context"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/mapper"
	"dorm-assistant-be/internal/model"
	"dorm-assistant-be/internal/repository/contract"
	"dorm-assistant-be/pkg/retrieval"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeEmbeddingRepository(db *gorm.DB) contract.KnowledgeEmbeddingRepository {
	return &KnowledgeEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.KnowledgeEmbedding) error {
	m := r.mapper.EmbeddingToModel(embedding)
	m.Id = 0

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("knowledge_item_id = ?", m.KnowledgeItemId).
			Delete(&model.KnowledgeEmbedding{}).Error; err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		*embedding = *r.mapper.EmbeddingToEntity(m)
		return nil
	})
}

func (r *KnowledgeEmbeddingRepositoryImpl) DeleteByItemId(ctx context.Context, itemId int64) error {
	return r.db.WithContext(ctx).
		Where("knowledge_item_id = ?", itemId).
		Delete(&model.KnowledgeEmbedding{}).Error
}

func (r *KnowledgeEmbeddingRepositoryImpl) All(ctx context.Context) ([]*entity.KnowledgeEmbedding, error) {
	var models []*model.KnowledgeEmbedding
	if err := r.db.WithContext(ctx).Order("knowledge_item_id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EmbeddingToEntity(m)
	}
	return entities, nil
}

// SearchNearest uses pgvector cosine distance (`embedding_value <=> ?`).
// The distance is selected alongside the row so the caller gets the raw
// signal and decides how to score it.
func (r *KnowledgeEmbeddingRepositoryImpl) SearchNearest(ctx context.Context, vector []float32, topK int) ([]retrieval.Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	type nearestRow struct {
		KnowledgeItemId int64
		Distance        float64
	}

	var rows []nearestRow
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeEmbedding{}).
		Select("knowledge_item_id, embedding_value <=> ? AS distance", pgvector.NewVector(vector)).
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(vector))).
		Limit(topK).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]retrieval.Hit, len(rows))
	for i, row := range rows {
		hits[i] = retrieval.Hit{ItemID: row.KnowledgeItemId, Distance: row.Distance}
	}
	return hits, nil
}
