package hnswindex

import (
	"context"
	"errors"
	"math"
	"sync"

	"dorm-assistant-be/pkg/retrieval"

	"github.com/coder/hnsw"
)

// Index is an in-memory SearchIndex over an HNSW graph, used when the
// service runs without Postgres/pgvector. It is rebuilt from the knowledge
// base at startup and updated by the embedding consumer.
type Index struct {
	graph *hnsw.Graph[int64]
	dim   int
	mu    sync.RWMutex
}

func New(dim int) *Index {
	return &Index{
		graph: hnsw.NewGraph[int64](),
		dim:   dim,
	}
}

var _ retrieval.SearchIndex = &Index{}

// Add inserts or replaces the vector for an item.
func (idx *Index) Add(itemID int64, vector []float32) error {
	if len(vector) != idx.dim {
		return errors.New("embedding dimension mismatch")
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	// hnsw.Graph.Add panics on a duplicate key, so drop any old vector first.
	idx.graph.Delete(itemID)
	idx.graph.Add(hnsw.MakeNode(itemID, vector))
	return nil
}

func (idx *Index) Remove(itemID int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.graph.Delete(itemID)
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.graph.Len()
}

// Search reports cosine distance (1 - cosine similarity) for the topK
// nearest neighbours, matching what pgvector's `<=>` operator returns.
func (idx *Index) Search(ctx context.Context, vector []float32, topK int) ([]retrieval.Hit, error) {
	if len(vector) != idx.dim {
		return nil, errors.New("query embedding dimension mismatch")
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	neighbors := idx.graph.Search(vector, topK)
	hits := make([]retrieval.Hit, 0, len(neighbors))
	for _, node := range neighbors {
		hits = append(hits, retrieval.Hit{
			ItemID:   node.Key,
			Distance: 1.0 - cosineSimilarity(vector, node.Value),
		})
	}
	return hits, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
