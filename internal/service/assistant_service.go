package service

import (
	"context"
	"strings"
	"time"

	"dorm-assistant-be/internal/dto"
	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/pkg/apperrors"
	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/repository/specification"
	"dorm-assistant-be/internal/repository/unitofwork"
	"dorm-assistant-be/pkg/events"
	"dorm-assistant-be/pkg/llm"
	pktNats "dorm-assistant-be/pkg/nats"
	"dorm-assistant-be/pkg/ragcore/contextbuild"
	"dorm-assistant-be/pkg/ragcore/history"
	"dorm-assistant-be/pkg/ragcore/prompt"
	"dorm-assistant-be/pkg/ragcore/session"
	"dorm-assistant-be/pkg/retrieval"

	"github.com/google/uuid"
)

type IAssistantService interface {
	Answer(ctx context.Context, userId int64, req *dto.AnswerRequest) (*dto.AnswerResponse, error)
	ActiveSession(ctx context.Context, userId int64) (*dto.SessionResponse, error)
	EndSession(ctx context.Context, sessionId uuid.UUID) error
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	SessionTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]*dto.ConversationTurnResponse, error)
	Cleanup(ctx context.Context, retentionDays int) (*dto.CleanupResponse, error)
}

// GenerationOptions carries the sampling parameters forwarded to the model.
type GenerationOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

type assistantService struct {
	uowFactory     unitofwork.RepositoryFactory
	retriever      retrieval.Retriever
	assembler      *contextbuild.Assembler
	sessionManager *session.Manager
	historyLoader  *history.Loader
	llmProvider    llm.LLMProvider
	genOptions     GenerationOptions
	eventPublisher *pktNats.Publisher
	retrieveLimit  int
	logger         logger.ILogger
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	retriever retrieval.Retriever,
	assembler *contextbuild.Assembler,
	sessionManager *session.Manager,
	historyLoader *history.Loader,
	llmProvider llm.LLMProvider,
	genOptions GenerationOptions,
	eventPublisher *pktNats.Publisher,
	retrieveLimit int,
	log logger.ILogger,
) IAssistantService {
	if retrieveLimit <= 0 {
		retrieveLimit = 3
	}
	return &assistantService{
		uowFactory:     uowFactory,
		retriever:      retriever,
		assembler:      assembler,
		sessionManager: sessionManager,
		historyLoader:  historyLoader,
		llmProvider:    llmProvider,
		genOptions:     genOptions,
		eventPublisher: eventPublisher,
		retrieveLimit:  retrieveLimit,
		logger:         log,
	}
}

// Answer runs the full pipeline: resolve session, retrieve, assemble
// context, prompt, generate, persist turns. Generation failures never
// surface to the caller; the response degrades to a context-built
// fallback instead.
func (s *assistantService) Answer(ctx context.Context, userId int64, req *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.NewValidation("query", "query must not be empty")
	}
	query := strings.TrimSpace(req.Query)

	var activeSession *entity.Session
	if req.SessionMode {
		var err error
		activeSession, err = s.sessionManager.GetOrCreate(ctx, userId)
		if err != nil {
			return nil, err
		}
	}

	scored := s.retrieveScored(ctx, query)
	assembled := s.assembler.Assemble(scored)
	usedContext := assembled != contextbuild.NoInformationSentinel

	var chatHistory []llm.Message
	if activeSession != nil {
		var err error
		chatHistory, err = s.historyLoader.LoadConversationHistory(ctx, activeSession.Id)
		if err != nil {
			// History is an enrichment; answer without it.
			s.logger.Warn("assistant-service", "failed to load history", map[string]interface{}{
				"session_id": activeSession.Id,
				"error":      err.Error(),
			})
			chatHistory = nil
		}
	}

	finalPrompt := prompt.NewContextualBuilder(assembled, query, chatHistory).Build()

	answer, genErr := s.llmProvider.Generate(ctx, finalPrompt,
		llm.WithMaxTokens(s.genOptions.MaxTokens),
		llm.WithTemperature(s.genOptions.Temperature),
		llm.WithTopP(s.genOptions.TopP),
	)

	res := &dto.AnswerResponse{
		SourcesCount: len(scored),
		UsedContext:  usedContext,
	}
	if activeSession != nil {
		id := activeSession.Id
		res.SessionId = &id
	}

	if genErr != nil {
		s.logger.Error("assistant-service", "generation failed, serving fallback", map[string]interface{}{
			"user_id": userId,
			"fatal":   llm.IsFatal(genErr),
			"error":   genErr.Error(),
		})
		res.Answer = prompt.FallbackAnswer(assembled)
		res.Degraded = true
		s.publishAnswerEvent(ctx, userId, res)
		return res, nil
	}

	res.Answer = answer

	if activeSession != nil {
		if err := s.persistTurns(ctx, activeSession.Id, query, answer); err != nil {
			s.logger.Error("assistant-service", "failed to persist turns", map[string]interface{}{
				"session_id": activeSession.Id,
				"error":      err.Error(),
			})
		}
	}

	s.publishAnswerEvent(ctx, userId, res)
	return res, nil
}

// retrieveScored fetches and hydrates ranked knowledge. Retrieval is
// best-effort enrichment: any failure degrades to an empty result set.
func (s *assistantService) retrieveScored(ctx context.Context, query string) []contextbuild.ScoredItem {
	results, err := s.retriever.Retrieve(ctx, query, s.retrieveLimit)
	if err != nil {
		s.logger.Warn("assistant-service", "retrieval failed, answering without context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ItemID
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.KnowledgeRepository().FindAll(ctx, specification.ByItemIDs{IDs: ids})
	if err != nil {
		s.logger.Warn("assistant-service", "failed to hydrate retrieved items", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	byId := make(map[int64]*entity.KnowledgeItem, len(items))
	for _, item := range items {
		byId[item.Id] = item
	}

	scored := make([]contextbuild.ScoredItem, 0, len(results))
	for _, r := range results {
		item, ok := byId[r.ItemID]
		if !ok {
			continue
		}
		scored = append(scored, contextbuild.ScoredItem{Item: item, Score: r.Score})
	}
	return scored
}

func (s *assistantService) persistTurns(ctx context.Context, sessionId uuid.UUID, query, answer string) error {
	if err := s.sessionManager.AppendTurn(ctx, sessionId, entity.TurnRoleUser, query); err != nil {
		return err
	}
	return s.sessionManager.AppendTurn(ctx, sessionId, entity.TurnRoleAssistant, answer)
}

// publishAnswerEvent emits an auxiliary event for downstream consumers
// (websocket stream, analytics). Turn content never enters the payload.
func (s *assistantService) publishAnswerEvent(ctx context.Context, userId int64, res *dto.AnswerResponse) {
	if s.eventPublisher == nil {
		return
	}
	data := map[string]interface{}{
		"user_id":       userId,
		"sources_count": res.SourcesCount,
		"used_context":  res.UsedContext,
		"degraded":      res.Degraded,
	}
	if res.SessionId != nil {
		data["session_id"] = res.SessionId.String()
	}
	evt := events.BaseEvent{
		Type:       events.TypeAnswerProduced,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("assistant-service", "failed to publish answer event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *assistantService) ActiveSession(ctx context.Context, userId int64) (*dto.SessionResponse, error) {
	sess, err := s.sessionManager.GetActive(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	return &dto.SessionResponse{
		Id:           sess.Id,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
		EndedAt:      sess.EndedAt,
		TurnCount:    sess.TurnCount,
	}, nil
}

func (s *assistantService) EndSession(ctx context.Context, sessionId uuid.UUID) error {
	if err := s.sessionManager.End(ctx, sessionId); err != nil {
		return err
	}
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeSessionEnded,
			Data: map[string]interface{}{
				"session_id": sessionId.String(),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("assistant-service", "failed to publish session event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *assistantService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	return s.sessionManager.ForceDelete(ctx, sessionId)
}

func (s *assistantService) SessionTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]*dto.ConversationTurnResponse, error) {
	turns, err := s.sessionManager.RecentTurns(ctx, sessionId, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ConversationTurnResponse, len(turns))
	for i, turn := range turns {
		res[i] = &dto.ConversationTurnResponse{
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		}
	}
	return res, nil
}

func (s *assistantService) Cleanup(ctx context.Context, retentionDays int) (*dto.CleanupResponse, error) {
	removed, err := s.sessionManager.Cleanup(ctx, retentionDays)
	if err != nil {
		return nil, err
	}
	s.logger.Info("assistant-service", "session cleanup finished", map[string]interface{}{
		"removed": removed,
	})
	return &dto.CleanupResponse{RemovedSessions: removed}, nil
}
