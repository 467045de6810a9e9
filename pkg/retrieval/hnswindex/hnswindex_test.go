package hnswindex

import (
	"context"
	"math"
	"testing"
)

func TestAddRejectsWrongDimension(t *testing.T) {
	idx := New(3)
	if err := idx.Add(1, []float32{1, 0}); err == nil {
		t.Error("Add() accepted a 2-dim vector in a 3-dim index")
	}
	if _, err := idx.Search(context.Background(), []float32{1, 0}, 5); err == nil {
		t.Error("Search() accepted a 2-dim query in a 3-dim index")
	}
}

func TestSearchReturnsNearestByCosineDistance(t *testing.T) {
	idx := New(2)
	vectors := map[int64][]float32{
		1: {1, 0},
		2: {0, 1},
		3: {0.9, 0.1},
	}
	for id, v := range vectors {
		if err := idx.Add(id, v); err != nil {
			t.Fatalf("Add(%d) error = %v", id, err)
		}
	}

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].ItemID != 1 {
		t.Errorf("nearest = %d, want 1", hits[0].ItemID)
	}
	if math.Abs(hits[0].Distance) > 1e-6 {
		t.Errorf("identical vector distance = %v, want 0", hits[0].Distance)
	}
	if hits[1].ItemID != 3 {
		t.Errorf("second nearest = %d, want 3", hits[1].ItemID)
	}
}

func TestAddReplacesExistingVector(t *testing.T) {
	idx := New(2)
	if err := idx.Add(1, []float32{1, 0}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := idx.Add(1, []float32{0, 1}); err != nil {
		t.Fatalf("re-Add() error = %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}

	hits, err := idx.Search(context.Background(), []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || math.Abs(hits[0].Distance) > 1e-6 {
		t.Errorf("replaced vector not found at distance 0: %v", hits)
	}
}

func TestRemove(t *testing.T) {
	idx := New(2)
	_ = idx.Add(1, []float32{1, 0})
	_ = idx.Add(2, []float32{0, 1})

	idx.Remove(1)
	if idx.Len() != 1 {
		t.Fatalf("Len() after Remove = %d, want 1", idx.Len())
	}
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, h := range hits {
		if h.ItemID == 1 {
			t.Error("removed item still returned by Search")
		}
	}
}
