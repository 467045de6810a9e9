package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId       int64      `gorm:"not null;index"`
	CreatedAt    time.Time  `gorm:"not null"`
	LastActivity time.Time  `gorm:"not null;index"`
	EndedAt      *time.Time `gorm:"index"`
	TurnCount    int64      `gorm:"default:0"`
}

func (Session) TableName() string {
	return "sessions"
}
