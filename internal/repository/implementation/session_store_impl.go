package implementation

import (
	"context"
	"errors"
	"time"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/mapper"
	"dorm-assistant-be/internal/model"
	"dorm-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStoreImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionStore(db *gorm.DB) contract.SessionStore {
	return &SessionStoreImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionStoreImpl) Insert(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SessionStoreImpl) Find(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var m model.Session
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionStoreImpl) FindLatestActive(ctx context.Context, userID int64, since time.Time) (*entity.Session, error) {
	var m model.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("ended_at IS NULL").
		Where("last_activity > ?", since).
		Order("last_activity DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionStoreImpl) MarkEnded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		Update("ended_at", at).Error
}

func (r *SessionStoreImpl) Remove(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.ConversationTurn{}).Error; err != nil {
			return err
		}
		// Delete of an absent row is a no-op, which keeps Remove idempotent.
		return tx.Delete(&model.Session{}, "id = ?", id).Error
	})
}

func (r *SessionStoreImpl) RemoveInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The cutoff was computed before the sweep; sessions touched since
		// then have a newer last_activity and are left alone.
		subQuery := tx.Model(&model.Session{}).Select("id").Where("last_activity < ?", cutoff)
		if err := tx.Where("session_id IN (?)", subQuery).Delete(&model.ConversationTurn{}).Error; err != nil {
			return err
		}
		res := tx.Where("last_activity < ?", cutoff).Delete(&model.Session{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}

func (r *SessionStoreImpl) AppendTurn(ctx context.Context, turn *entity.ConversationTurn) error {
	m := r.mapper.TurnToModel(turn)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&model.Session{}).
			Where("id = ?", m.SessionId).
			Updates(map[string]interface{}{
				"last_activity": m.CreatedAt,
				"turn_count":    gorm.Expr("turn_count + 1"),
			}).Error
	})
}

// Turns returns the most recent `limit` turns, presented oldest-first so
// they can be replayed as conversation history.
func (r *SessionStoreImpl) Turns(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if limit > 0 {
		query = query.Order("created_at DESC").Limit(limit)
	} else {
		query = query.Order("created_at ASC")
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	if limit > 0 {
		for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
			models[i], models[j] = models[j], models[i]
		}
	}
	return r.mapper.TurnsToEntities(models), nil
}
