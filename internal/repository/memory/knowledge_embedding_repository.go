package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/pkg/retrieval"
)

// KnowledgeEmbeddingRepository keeps embeddings in memory and answers
// nearest-neighbour queries by brute-force cosine distance. At dormitory
// scale (hundreds of items) a linear scan is plenty.
type KnowledgeEmbeddingRepository struct {
	mu     sync.RWMutex
	byItem map[int64]*entity.KnowledgeEmbedding
	nextId int64
}

func NewKnowledgeEmbeddingRepository() *KnowledgeEmbeddingRepository {
	return &KnowledgeEmbeddingRepository{
		byItem: make(map[int64]*entity.KnowledgeEmbedding),
		nextId: 1,
	}
}

func (r *KnowledgeEmbeddingRepository) Upsert(ctx context.Context, emb *entity.KnowledgeEmbedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *emb
	if existing, ok := r.byItem[emb.KnowledgeItemId]; ok {
		cp.Id = existing.Id
	} else {
		cp.Id = r.nextId
		r.nextId++
	}
	r.byItem[emb.KnowledgeItemId] = &cp
	emb.Id = cp.Id
	return nil
}

func (r *KnowledgeEmbeddingRepository) DeleteByItemId(ctx context.Context, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byItem, itemID)
	return nil
}

func (r *KnowledgeEmbeddingRepository) All(ctx context.Context) ([]*entity.KnowledgeEmbedding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.KnowledgeEmbedding, 0, len(r.byItem))
	for _, emb := range r.byItem {
		cp := *emb
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KnowledgeItemId < out[j].KnowledgeItemId })
	return out, nil
}

func (r *KnowledgeEmbeddingRepository) SearchNearest(ctx context.Context, vector []float32, topK int) ([]retrieval.Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	hits := make([]retrieval.Hit, 0, len(r.byItem))
	for _, emb := range r.byItem {
		hits = append(hits, retrieval.Hit{
			ItemID:   emb.KnowledgeItemId,
			Distance: cosineDistance(vector, emb.Values),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ItemID < hits[j].ItemID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
