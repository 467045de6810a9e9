package retrieval

import (
	"context"
	"fmt"
)

// Result is the single result shape every strategy produces. Score semantics
// differ per strategy (match count vs similarity) but higher is always more
// relevant, and ordering is descending score with ascending item id on ties.
type Result struct {
	ItemID int64
	Score  float64
	Rank   int
}

// Hit is a raw nearest-neighbour answer from a similarity index,
// before distance is converted to a similarity score.
type Hit struct {
	ItemID   int64
	Distance float64
}

// Retriever turns a free-text query into a ranked, bounded result list.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]Result, error)
}

// Embedder is the external embedding capability the vector strategy needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchIndex answers nearest-neighbour queries by distance.
type SearchIndex interface {
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)
}

// Error marks a retrieval failure as distinct from an empty result set.
// Callers treat it as fail-soft: log it, answer without context.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
