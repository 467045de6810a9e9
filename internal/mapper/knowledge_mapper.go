package mapper

import (
	"encoding/json"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ItemToEntity(i *model.KnowledgeItem) *entity.KnowledgeItem {
	if i == nil {
		return nil
	}

	var tags []string
	if len(i.Tags) > 0 {
		// A malformed tags column degrades to no tags rather than failing the read.
		_ = json.Unmarshal(i.Tags, &tags)
	}

	return &entity.KnowledgeItem{
		Id:        i.Id,
		Text:      i.Text,
		Category:  i.Category,
		Tags:      tags,
		CreatedAt: i.CreatedAt,
	}
}

func (m *KnowledgeMapper) ItemToModel(i *entity.KnowledgeItem) *model.KnowledgeItem {
	if i == nil {
		return nil
	}

	tags := i.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)

	return &model.KnowledgeItem{
		Id:        i.Id,
		Text:      i.Text,
		Category:  i.Category,
		Tags:      datatypes.JSON(raw),
		CreatedAt: i.CreatedAt,
	}
}

func (m *KnowledgeMapper) ItemsToEntities(models []*model.KnowledgeItem) []*entity.KnowledgeItem {
	entities := make([]*entity.KnowledgeItem, len(models))
	for i, mo := range models {
		entities[i] = m.ItemToEntity(mo)
	}
	return entities
}

func (m *KnowledgeMapper) EmbeddingToEntity(e *model.KnowledgeEmbedding) *entity.KnowledgeEmbedding {
	if e == nil {
		return nil
	}
	return &entity.KnowledgeEmbedding{
		Id:              e.Id,
		KnowledgeItemId: e.KnowledgeItemId,
		Values:          e.EmbeddingValue.Slice(),
		CreatedAt:       e.CreatedAt,
	}
}

func (m *KnowledgeMapper) EmbeddingToModel(e *entity.KnowledgeEmbedding) *model.KnowledgeEmbedding {
	if e == nil {
		return nil
	}
	return &model.KnowledgeEmbedding{
		Id:              e.Id,
		KnowledgeItemId: e.KnowledgeItemId,
		EmbeddingValue:  pgvector.NewVector(e.Values),
		CreatedAt:       e.CreatedAt,
	}
}
