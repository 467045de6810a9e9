package model

import (
	"time"

	"gorm.io/datatypes"
)

type KnowledgeItem struct {
	Id        int64          `gorm:"primaryKey;autoIncrement"`
	Text      string         `gorm:"type:text;not null"`
	Category  string         `gorm:"type:varchar(100);not null;index"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (KnowledgeItem) TableName() string {
	return "knowledge_items"
}
