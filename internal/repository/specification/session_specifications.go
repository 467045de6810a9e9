package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByUserID struct {
	UserID int64
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type NotEnded struct{}

func (s NotEnded) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ended_at IS NULL")
}

// ActiveSince keeps sessions whose last activity is strictly after the
// given instant, i.e. the non-expired predicate.
type ActiveSince struct {
	T time.Time
}

func (s ActiveSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity > ?", s.T)
}

type LastActivityBefore struct {
	T time.Time
}

func (s LastActivityBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity < ?", s.T)
}
