package history

import (
	"context"

	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/repository/contract"
	"dorm-assistant-be/pkg/llm"

	"github.com/google/uuid"
)

const DefaultLimit = 10

// Loader turns stored conversation turns into chat history for the model.
type Loader struct {
	store contract.SessionStore
	limit int
}

func NewLoader(store contract.SessionStore, limit int) *Loader {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Loader{
		store: store,
		limit: limit,
	}
}

// LoadConversationHistory returns the session's most recent turns, oldest
// first, mapped onto provider-agnostic chat messages.
func (l *Loader) LoadConversationHistory(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error) {
	turns, err := l.store.Turns(ctx, sessionId, l.limit)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		role := "user"
		if turn.Role == entity.TurnRoleAssistant {
			role = "assistant"
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: turn.Content,
		})
	}

	return messages, nil
}
