package contract

import (
	"context"
	"time"

	"dorm-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// SessionStore is the durable home of sessions and their turns. It carries
// no policy: expiry, truncation and per-session locking live in the session
// manager. The store never rejects concurrent creates for one user; lookup
// resolves races by most recent activity.
type SessionStore interface {
	Insert(ctx context.Context, session *entity.Session) error
	// Find returns nil (no error) when the session does not exist.
	Find(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	// FindLatestActive returns the not-ended session with the most recent
	// last_activity strictly after `since`, or nil.
	FindLatestActive(ctx context.Context, userID int64, since time.Time) (*entity.Session, error)
	MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error
	// Remove hard-deletes the session and its turns; absent ids are a no-op.
	Remove(ctx context.Context, id uuid.UUID) error
	// RemoveInactiveBefore deletes sessions (and turns) whose last_activity
	// is older than the cutoff and reports how many sessions went away.
	RemoveInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// AppendTurn stores the turn and bumps the session's last_activity and
	// turn counter in the same write.
	AppendTurn(ctx context.Context, turn *entity.ConversationTurn) error
	// Turns returns up to limit turns, oldest first. limit <= 0 means all.
	Turns(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ConversationTurn, error)
}
