package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dorm-assistant-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionStore keeps sessions and their turns in a go-cache instance.
// It backs DB-less deployments and the test suite; the cache never
// expires entries on its own, retention is handled by RemoveInactiveBefore.
type SessionStore struct {
	mu       sync.Mutex
	sessions *cache.Cache
	turns    *cache.Cache
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: cache.New(cache.NoExpiration, 10*time.Minute),
		turns:    cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (s *SessionStore) Insert(ctx context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions.Set(session.Id.String(), &cp, cache.NoExpiration)
	return nil
}

func (s *SessionStore) Find(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x, found := s.sessions.Get(sessionID.String()); found {
		cp := *(x.(*entity.Session))
		return &cp, nil
	}
	return nil, nil
}

func (s *SessionStore) FindLatestActive(ctx context.Context, userID int64, since time.Time) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *entity.Session
	for _, item := range s.sessions.Items() {
		sess := item.Object.(*entity.Session)
		if sess.UserId != userID || sess.Ended() || !sess.LastActivity.After(since) {
			continue
		}
		if latest == nil || sess.LastActivity.After(latest.LastActivity) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *SessionStore) MarkEnded(ctx context.Context, sessionID uuid.UUID, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x, found := s.sessions.Get(sessionID.String()); found {
		sess := x.(*entity.Session)
		sess.EndedAt = &endedAt
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Delete(sessionID.String())
	s.turns.Delete(sessionID.String())
	return nil
}

func (s *SessionStore) RemoveInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, item := range s.sessions.Items() {
		sess := item.Object.(*entity.Session)
		if sess.LastActivity.Before(cutoff) {
			s.sessions.Delete(key)
			s.turns.Delete(key)
			removed++
		}
	}
	return removed, nil
}

func (s *SessionStore) AppendTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := turn.SessionId.String()
	var list []*entity.ConversationTurn
	if x, found := s.turns.Get(key); found {
		list = x.([]*entity.ConversationTurn)
	}
	cp := *turn
	list = append(list, &cp)
	s.turns.Set(key, list, cache.NoExpiration)
	if x, found := s.sessions.Get(key); found {
		sess := x.(*entity.Session)
		sess.LastActivity = turn.CreatedAt
		sess.TurnCount++
	}
	return nil
}

func (s *SessionStore) Turns(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, found := s.turns.Get(sessionID.String())
	if !found {
		return nil, nil
	}
	list := x.([]*entity.ConversationTurn)
	sorted := make([]*entity.ConversationTurn, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	out := make([]*entity.ConversationTurn, len(sorted))
	for i, t := range sorted {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}
