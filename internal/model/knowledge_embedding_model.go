package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type KnowledgeEmbedding struct {
	Id              int64           `gorm:"primaryKey;autoIncrement"`
	KnowledgeItemId int64           `gorm:"not null;uniqueIndex"`
	EmbeddingValue  pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 dimensions
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeEmbedding) TableName() string {
	return "knowledge_embeddings"
}
