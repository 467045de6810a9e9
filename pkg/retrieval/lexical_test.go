package retrieval

import (
	"context"
	"reflect"
	"testing"

	"dorm-assistant-be/internal/entity"
)

type staticSource struct {
	items []*entity.KnowledgeItem
}

func (s *staticSource) All(ctx context.Context) ([]*entity.KnowledgeItem, error) {
	return s.items, nil
}

func dormSource() *staticSource {
	return &staticSource{items: []*entity.KnowledgeItem{
		{Id: 1, Text: "Dormitory address: Moskvorechye street 2, building 3.", Category: "general", Tags: []string{"address", "location"}},
		{Id: 2, Text: "The laundry room is on the first floor, open 8:00 to 22:00.", Category: "facilities", Tags: []string{"laundry"}},
		{Id: 3, Text: "Wifi network name is DORM-NET, password on your check-in sheet.", Category: "facilities", Tags: []string{"wifi", "internet"}},
	}}
}

func TestLexicalRetrieve(t *testing.T) {
	r := NewLexicalRetriever(dormSource())

	tests := []struct {
		name    string
		query   string
		limit   int
		wantIDs []int64
	}{
		{
			// "the" is kept (3 runes) and substring-matches item 2's text,
			// but the tag hit keeps item 1 on top.
			name:    "address question matches text and tag",
			query:   "What is the address?",
			limit:   3,
			wantIDs: []int64{1, 2},
		},
		{
			name:    "unrelated query returns nothing",
			query:   "How do I cook borscht?",
			limit:   3,
			wantIDs: nil,
		},
		{
			name:    "short tokens are discarded",
			query:   "is to on",
			limit:   3,
			wantIDs: nil,
		},
		{
			name:    "wifi tag outranks plain text match",
			query:   "wifi password",
			limit:   3,
			wantIDs: []int64{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := r.Retrieve(context.Background(), tt.query, tt.limit)
			if err != nil {
				t.Fatalf("Retrieve() error = %v", err)
			}
			gotIDs := idsOf(results)
			if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Errorf("Retrieve() ids = %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}
}

func TestLexicalAddressScore(t *testing.T) {
	r := NewLexicalRetriever(dormSource())

	// "address" appears in the text (+1) and as an exact tag (+2).
	results, err := r.Retrieve(context.Background(), "What is the address?", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) == 0 || results[0].ItemID != 1 {
		t.Fatalf("Retrieve() top result = %v, want item 1 first", results)
	}
	if results[0].Score != 3 {
		t.Errorf("Score = %v, want 3", results[0].Score)
	}
	if results[0].Rank != 1 {
		t.Errorf("Rank = %d, want 1", results[0].Rank)
	}
}

func TestLexicalOrderingAndTies(t *testing.T) {
	source := &staticSource{items: []*entity.KnowledgeItem{
		{Id: 5, Text: "laundry machines", Category: "a", Tags: nil},
		{Id: 2, Text: "laundry tokens", Category: "b", Tags: nil},
		{Id: 9, Text: "laundry room laundry schedule", Category: "c", Tags: []string{"laundry"}},
	}}
	r := NewLexicalRetriever(source)

	results, err := r.Retrieve(context.Background(), "laundry", 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	// Item 9 scores 3 (substring + tag); 2 and 5 tie at 1 and order by id.
	wantIDs := []int64{9, 2, 5}
	if got := idsOf(results); !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("Retrieve() ids = %v, want %v", got, wantIDs)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing: %v", results)
		}
	}
}

func TestLexicalLimit(t *testing.T) {
	source := &staticSource{items: []*entity.KnowledgeItem{
		{Id: 1, Text: "rent payment", Category: "a"},
		{Id: 2, Text: "rent office", Category: "a"},
		{Id: 3, Text: "rent contract", Category: "a"},
	}}
	r := NewLexicalRetriever(source)

	results, err := r.Retrieve(context.Background(), "rent", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Retrieve() returned %d results, want 2", len(results))
	}
}

func TestLexicalDeterminism(t *testing.T) {
	r := NewLexicalRetriever(dormSource())

	first, err := r.Retrieve(context.Background(), "laundry wifi address", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Retrieve(context.Background(), "laundry wifi address", 3)
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Retrieve() not deterministic: %v vs %v", first, again)
		}
	}
}

func idsOf(results []Result) []int64 {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ItemID
	}
	return ids
}
