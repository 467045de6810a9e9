package memory

import (
	"context"

	"dorm-assistant-be/internal/repository/contract"
	"dorm-assistant-be/internal/repository/unitofwork"
)

// RepositoryFactory backs DB-less deployments: every unit of work shares
// the same in-memory repositories and transactions are no-ops.
type RepositoryFactory struct {
	knowledge  *KnowledgeRepository
	embeddings *KnowledgeEmbeddingRepository
	sessions   *SessionStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		knowledge:  NewKnowledgeRepository(),
		embeddings: NewKnowledgeEmbeddingRepository(),
		sessions:   NewSessionStore(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) KnowledgeRepository() contract.KnowledgeRepository {
	return u.factory.knowledge
}

func (u *unitOfWork) KnowledgeEmbeddingRepository() contract.KnowledgeEmbeddingRepository {
	return u.factory.embeddings
}

func (u *unitOfWork) SessionStore() contract.SessionStore {
	return u.factory.sessions
}
