package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Session is a time-boxed bag of conversation turns for one user.
// "Active" is a computed predicate (LastActivity within the timeout),
// never a stored state; an ended session is excluded from lookup forever.
type Session struct {
	Id           uuid.UUID
	UserId       int64
	CreatedAt    time.Time
	LastActivity time.Time
	EndedAt      *time.Time
	TurnCount    int64
}

func (s *Session) Ended() bool {
	return s.EndedAt != nil
}

// ActiveAt reports whether the session counts as active at the given instant.
func (s *Session) ActiveAt(now time.Time, timeout time.Duration) bool {
	return !s.Ended() && now.Sub(s.LastActivity) < timeout
}

// ConversationTurn is immutable once appended.
type ConversationTurn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}
