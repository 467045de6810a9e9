package retrieval

import (
	"context"
	"sort"
)

// VectorRetriever embeds the query and asks a similarity index for the
// nearest items. Distances are inverted to similarity (1/(1+d), 1.0 at
// zero distance) so that higher always means more relevant, matching the
// lexical strategy's contract.
//
// Embedding or index failures come back as *Error so callers can tell a
// broken pipeline from a genuinely empty result set.
type VectorRetriever struct {
	embedder Embedder
	index    SearchIndex
	floor    float64 // minimum similarity to keep; <= 0 disables
}

func NewVectorRetriever(embedder Embedder, index SearchIndex, floor float64) *VectorRetriever {
	return &VectorRetriever{
		embedder: embedder,
		index:    index,
		floor:    floor,
	}
}

var _ Retriever = &VectorRetriever{}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, limit int) ([]Result, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &Error{Op: "embed", Err: err}
	}

	hits, err := r.index.Search(ctx, vector, limit)
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}

	var results []Result
	for _, hit := range hits {
		score := DistanceToSimilarity(hit.Distance)
		if r.floor > 0 && score < r.floor {
			continue
		}
		results = append(results, Result{ItemID: hit.ItemID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ItemID < results[j].ItemID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// DistanceToSimilarity converts an index distance into a relevance score.
// Zero or negative distances count as an exact match.
func DistanceToSimilarity(d float64) float64 {
	if d <= 0 {
		return 1.0
	}
	return 1.0 / (1.0 + d)
}
