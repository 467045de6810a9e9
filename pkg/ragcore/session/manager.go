package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/pkg/apperrors"
	"dorm-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
)

const (
	DefaultTimeout       = 30 * time.Minute
	DefaultRetentionDays = 7
	DefaultMaxTurnLen    = 5000

	// truncationMarker terminates turn content that had to be cut.
	truncationMarker = " ... [truncated]"
)

// Manager enforces the session lifecycle on top of a SessionStore:
// lazy creation, the single-active-session lookup, turn validation and
// the retention sweep. Turn appends are serialized per session, never
// globally.
type Manager struct {
	store      contract.SessionStore
	timeout    time.Duration
	maxTurnLen int
	now        func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewManager(store contract.SessionStore, timeout time.Duration, maxTurnLen int) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxTurnLen <= 0 {
		maxTurnLen = DefaultMaxTurnLen
	}
	return &Manager{
		store:      store,
		timeout:    timeout,
		maxTurnLen: maxTurnLen,
		now:        time.Now,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// WithClock overrides the time source. Tests use it to drive expiry.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) sessionLock(id uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

func (m *Manager) releaseLock(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, id)
}

// Create starts a fresh session for the user. The store does not reject
// concurrent creates; a race yields two sessions and GetActive
// deterministically returns the most recently active one.
func (m *Manager) Create(ctx context.Context, userID int64) (*entity.Session, error) {
	now := m.now()
	session := &entity.Session{
		Id:           uuid.New(),
		UserId:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.store.Insert(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetActive returns the user's most recently active non-expired,
// non-ended session, or nil. Expiry is a computed predicate; an expired
// session stays in storage until the retention sweep.
func (m *Manager) GetActive(ctx context.Context, userID int64) (*entity.Session, error) {
	since := m.now().Add(-m.timeout)
	return m.store.FindLatestActive(ctx, userID, since)
}

// GetOrCreate resolves the active session or lazily starts one.
func (m *Manager) GetOrCreate(ctx context.Context, userID int64) (*entity.Session, error) {
	session, err := m.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	return m.Create(ctx, userID)
}

// AppendTurn validates and stores a turn, bumping the session's
// last_activity. Content longer than the configured maximum is truncated
// with a marker.
func (m *Manager) AppendTurn(ctx context.Context, sessionID uuid.UUID, role, content string) error {
	if strings.TrimSpace(content) == "" {
		return apperrors.NewValidation("content", "turn content must not be empty")
	}

	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.Find(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return apperrors.NewNotFound("session", sessionID.String())
	}

	turn := &entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: sessionID,
		Role:      role,
		Content:   m.truncate(content),
		CreatedAt: m.now(),
	}
	return m.store.AppendTurn(ctx, turn)
}

func (m *Manager) truncate(content string) string {
	if utf8.RuneCountInString(content) <= m.maxTurnLen {
		return content
	}
	cut := m.maxTurnLen - utf8.RuneCountInString(truncationMarker)
	return string([]rune(content)[:cut]) + truncationMarker
}

// End marks the session ended; GetActive never returns it afterwards.
func (m *Manager) End(ctx context.Context, sessionID uuid.UUID) error {
	session, err := m.store.Find(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return apperrors.NewNotFound("session", sessionID.String())
	}
	return m.store.MarkEnded(ctx, sessionID, m.now())
}

// ForceDelete removes the session and its turns. Deleting an absent
// session is a no-op.
func (m *Manager) ForceDelete(ctx context.Context, sessionID uuid.UUID) error {
	if err := m.store.Remove(ctx, sessionID); err != nil {
		return err
	}
	m.releaseLock(sessionID)
	return nil
}

// Cleanup removes sessions whose last activity predates the retention
// window and returns how many were removed. The cutoff is computed once,
// so sessions touched after it are never swept.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := m.now().AddDate(0, 0, -retentionDays)
	return m.store.RemoveInactiveBefore(ctx, cutoff)
}

// RecentTurns returns the session's latest turns, oldest first.
func (m *Manager) RecentTurns(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ConversationTurn, error) {
	return m.store.Turns(ctx, sessionID, limit)
}
