package retrieval

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeIndex struct {
	hits []Hit
	err  error
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	return f.hits, f.err
}

func TestDistanceToSimilarity(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{distance: 0, want: 1.0},
		{distance: -0.1, want: 1.0},
		{distance: 1, want: 0.5},
		{distance: 3, want: 0.25},
	}
	for _, tt := range tests {
		if got := DistanceToSimilarity(tt.distance); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DistanceToSimilarity(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestVectorRetrieveScoresAndOrders(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	index := &fakeIndex{hits: []Hit{
		{ItemID: 7, Distance: 1.0}, // similarity 0.5
		{ItemID: 3, Distance: 0},   // similarity 1.0
		{ItemID: 9, Distance: 1.0}, // similarity 0.5, tie with 7
	}}
	r := NewVectorRetriever(embedder, index, 0)

	results, err := r.Retrieve(context.Background(), "laundry", 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	wantIDs := []int64{3, 7, 9}
	if got := idsOf(results); !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("Retrieve() ids = %v, want %v", got, wantIDs)
	}
	if results[0].Score != 1.0 || results[1].Score != 0.5 {
		t.Errorf("unexpected scores: %v", results)
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("Rank[%d] = %d, want %d", i, r.Rank, i+1)
		}
	}
}

func TestVectorRetrieveSimilarityFloor(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	index := &fakeIndex{hits: []Hit{
		{ItemID: 1, Distance: 0.5}, // similarity ~0.667, kept
		{ItemID: 2, Distance: 3.0}, // similarity 0.25, dropped
	}}
	r := NewVectorRetriever(embedder, index, 0.5)

	results, err := r.Retrieve(context.Background(), "wifi", 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if got := idsOf(results); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("Retrieve() ids = %v, want [1]", got)
	}
}

func TestVectorRetrieveReturnsTypedError(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		r := NewVectorRetriever(
			&fakeEmbedder{err: errors.New("connection refused")},
			&fakeIndex{},
			0.5,
		)
		results, err := r.Retrieve(context.Background(), "wifi", 3)
		var retErr *Error
		if !errors.As(err, &retErr) {
			t.Fatalf("Retrieve() error = %v, want *Error", err)
		}
		if retErr.Op != "embed" {
			t.Errorf("Op = %q, want %q", retErr.Op, "embed")
		}
		if results != nil {
			t.Errorf("Retrieve() = %v, want nil", results)
		}
	})

	t.Run("index failure", func(t *testing.T) {
		r := NewVectorRetriever(
			&fakeEmbedder{vector: []float32{1}},
			&fakeIndex{err: errors.New("index unavailable")},
			0.5,
		)
		results, err := r.Retrieve(context.Background(), "wifi", 3)
		var retErr *Error
		if !errors.As(err, &retErr) {
			t.Fatalf("Retrieve() error = %v, want *Error", err)
		}
		if retErr.Op != "search" {
			t.Errorf("Op = %q, want %q", retErr.Op, "search")
		}
		if results != nil {
			t.Errorf("Retrieve() = %v, want nil", results)
		}
	})
}
