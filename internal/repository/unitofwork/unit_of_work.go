package unitofwork

import (
	"context"

	"dorm-assistant-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical operation. Begin is
// optional; without it repositories run on the shared connection.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	KnowledgeRepository() contract.KnowledgeRepository
	KnowledgeEmbeddingRepository() contract.KnowledgeEmbeddingRepository
	SessionStore() contract.SessionStore
}
