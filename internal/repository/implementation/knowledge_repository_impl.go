package implementation

import (
	"context"
	"errors"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/mapper"
	"dorm-assistant-be/internal/model"
	"dorm-assistant-be/internal/repository/contract"
	"dorm-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeRepositoryImpl) Create(ctx context.Context, item *entity.KnowledgeItem) error {
	m := r.mapper.ItemToModel(item)
	// Let the sequence assign the id; ids are monotonically increasing and
	// never reused even after deletes.
	m.Id = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*item = *r.mapper.ItemToEntity(m)
	return nil
}

func (r *KnowledgeRepositoryImpl) All(ctx context.Context) ([]*entity.KnowledgeItem, error) {
	return r.FindAll(ctx, specification.OrderBy{Field: "id"})
}

func (r *KnowledgeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeItem, error) {
	var models []*model.KnowledgeItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ItemsToEntities(models), nil
}

func (r *KnowledgeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeItem, error) {
	var m model.KnowledgeItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ItemToEntity(&m), nil
}

func (r *KnowledgeRepositoryImpl) Stats(ctx context.Context) (*entity.KnowledgeStats, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.KnowledgeItem{}).Count(&total).Error; err != nil {
		return nil, err
	}

	type categoryCount struct {
		Category string
		Count    int64
	}
	var rows []categoryCount
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeItem{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int64, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row.Count
	}

	return &entity.KnowledgeStats{
		TotalCount:       total,
		CountsByCategory: byCategory,
	}, nil
}
