package entity

import (
	"time"
)

// KnowledgeItem is one atomic fact in the dormitory knowledge base.
// Ids are assigned on insert (max existing id + 1) and never reused.
type KnowledgeItem struct {
	Id        int64
	Text      string
	Category  string
	Tags      []string
	CreatedAt time.Time
}

// KnowledgeEmbedding holds the vector representation of one knowledge item.
type KnowledgeEmbedding struct {
	Id              int64
	KnowledgeItemId int64
	Values          []float32
	CreatedAt       time.Time
}

// KnowledgeStats is the aggregate view of the store.
type KnowledgeStats struct {
	TotalCount       int64
	CountsByCategory map[string]int64
}
