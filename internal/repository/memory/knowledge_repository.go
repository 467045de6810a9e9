package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/repository/specification"
)

// KnowledgeRepository is an in-memory implementation used for DB-less
// deployments and tests. Specifications are interpreted in-process; the
// subset understood here covers everything the services actually issue.
type KnowledgeRepository struct {
	mu     sync.RWMutex
	items  []*entity.KnowledgeItem
	nextId int64
}

func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{nextId: 1}
}

func (r *KnowledgeRepository) Create(ctx context.Context, item *entity.KnowledgeItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.Id = r.nextId
	r.nextId++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	cp := *item
	r.items = append(r.items, &cp)
	return nil
}

func (r *KnowledgeRepository) All(ctx context.Context) ([]*entity.KnowledgeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.KnowledgeItem, len(r.items))
	for i, item := range r.items {
		cp := *item
		out[i] = &cp
	}
	return out, nil
}

func (r *KnowledgeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.KnowledgeItem
	for _, item := range r.items {
		if matches(item, specs) {
			cp := *item
			out = append(out, &cp)
		}
	}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			applyOrder(out, s)
		case specification.Limit:
			if s.N > 0 && len(out) > s.N {
				out = out[:s.N]
			}
		}
	}
	return out, nil
}

func (r *KnowledgeRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeItem, error) {
	items, err := r.FindAll(ctx, specs...)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (r *KnowledgeRepository) Stats(ctx context.Context) (*entity.KnowledgeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &entity.KnowledgeStats{
		TotalCount:       int64(len(r.items)),
		CountsByCategory: make(map[string]int64),
	}
	for _, item := range r.items {
		stats.CountsByCategory[item.Category]++
	}
	return stats, nil
}

func matches(item *entity.KnowledgeItem, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByCategory:
			if item.Category != s.Category {
				return false
			}
		case specification.ByItemIDs:
			found := false
			for _, id := range s.IDs {
				if item.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func applyOrder(items []*entity.KnowledgeItem, s specification.OrderBy) {
	less := func(a, b *entity.KnowledgeItem) bool { return a.Id < b.Id }
	if s.Field == "created_at" {
		less = func(a, b *entity.KnowledgeItem) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if s.Desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
