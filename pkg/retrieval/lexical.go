package retrieval

import (
	"context"
	"sort"
	"strings"

	"dorm-assistant-be/internal/entity"
)

// ItemSource is the slice of the knowledge store the lexical strategy needs:
// a full scan in insertion order.
type ItemSource interface {
	All(ctx context.Context) ([]*entity.KnowledgeItem, error)
}

// LexicalRetriever scores items by token overlap: +1 per query token found
// as a substring of the lowered text, +2 per exact tag match. Tokens of
// length <= 2 are discarded. Pure function of (query, store contents).
type LexicalRetriever struct {
	source ItemSource
}

func NewLexicalRetriever(source ItemSource) *LexicalRetriever {
	return &LexicalRetriever{source: source}
}

var _ Retriever = &LexicalRetriever{}

func (r *LexicalRetriever) Retrieve(ctx context.Context, query string, limit int) ([]Result, error) {
	items, err := r.source.All(ctx)
	if err != nil {
		return nil, &Error{Op: "scan", Err: err}
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var results []Result
	for _, item := range items {
		score := relevance(item, tokens)
		if score == 0 {
			continue
		}
		results = append(results, Result{ItemID: item.Id, Score: float64(score)})
	}

	// Descending score; ascending id breaks ties so repeated calls are
	// byte-identical.
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

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".,!?:;\"'()")
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func relevance(item *entity.KnowledgeItem, tokens []string) int {
	text := strings.ToLower(item.Text)

	tags := make(map[string]bool, len(item.Tags))
	for _, t := range item.Tags {
		tags[strings.ToLower(t)] = true
	}

	score := 0
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			score++
		}
		if tags[tok] {
			score += 2 // tag matches weigh double
		}
	}
	return score
}
