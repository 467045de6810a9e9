package dto

import (
	"time"

	"github.com/google/uuid"
)

type AnswerRequest struct {
	Query       string `json:"query" validate:"required"`
	SessionMode bool   `json:"session_mode"`
}

type AnswerResponse struct {
	Answer       string     `json:"answer"`
	SourcesCount int        `json:"sources_count"`
	UsedContext  bool       `json:"used_context"`
	SessionId    *uuid.UUID `json:"session_id,omitempty"`
	// Degraded is set when generation failed and the answer is the
	// graceful fallback built from retrieved context.
	Degraded bool `json:"degraded,omitempty"`
}

type SessionResponse struct {
	Id           uuid.UUID  `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	TurnCount    int64      `json:"turn_count"`
}

type ConversationTurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CleanupResponse struct {
	RemovedSessions int64 `json:"removed_sessions"`
}
