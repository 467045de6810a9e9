package dto

import "time"

type AddKnowledgeRequest struct {
	Text     string   `json:"text" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Tags     []string `json:"tags"`
}

type AddKnowledgeResponse struct {
	Id int64 `json:"id"`
}

type KnowledgeItemResponse struct {
	Id        int64     `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

type KnowledgeStatsResponse struct {
	TotalCount       int64            `json:"total_count"`
	CountsByCategory map[string]int64 `json:"counts_by_category"`
}

type SearchKnowledgeRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

type SearchKnowledgeResult struct {
	Id       int64   `json:"id"`
	Category string  `json:"category"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// PublishEmbedKnowledgeMessage is the async embedding job payload.
type PublishEmbedKnowledgeMessage struct {
	KnowledgeItemId int64 `json:"knowledge_item_id"`
}
