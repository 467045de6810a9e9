package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dorm-assistant-be/internal/dto"
	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/pkg/apperrors"
	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/repository/memory"
	"dorm-assistant-be/pkg/llm"
	"dorm-assistant-be/pkg/ragcore/contextbuild"
	"dorm-assistant-be/pkg/ragcore/history"
	"dorm-assistant-be/pkg/ragcore/session"
	"dorm-assistant-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	results []retrieval.Result
	err     error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int) ([]retrieval.Result, error) {
	return f.results, f.err
}

type fakeLLM struct {
	answer string
	err    error
	calls  int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.Generate(ctx, "", options...)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type assistantFixture struct {
	service IAssistantService
	factory *memory.RepositoryFactory
	manager *session.Manager
}

func newAssistantFixture(t *testing.T, retriever retrieval.Retriever, provider llm.LLMProvider) *assistantFixture {
	t.Helper()
	factory := memory.NewRepositoryFactory()
	store := factory.NewUnitOfWork(context.Background()).SessionStore()
	manager := session.NewManager(store, 30*time.Minute, session.DefaultMaxTurnLen)
	svc := NewAssistantService(
		factory,
		retriever,
		contextbuild.NewAssembler(2000),
		manager,
		history.NewLoader(store, 10),
		provider,
		GenerationOptions{MaxTokens: 512, Temperature: 0.7, TopP: 0.9},
		nil,
		3,
		logger.NewNop(),
	)
	return &assistantFixture{service: svc, factory: factory, manager: manager}
}

func (f *assistantFixture) seedKnowledge(t *testing.T, category, text string) *entity.KnowledgeItem {
	t.Helper()
	item := &entity.KnowledgeItem{Text: text, Category: category, CreatedAt: time.Now()}
	repo := f.factory.NewUnitOfWork(context.Background()).KnowledgeRepository()
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestAnswerRejectsEmptyQuery(t *testing.T) {
	f := newAssistantFixture(t, &fakeRetriever{}, &fakeLLM{answer: "hi"})

	_, err := f.service.Answer(context.Background(), 1, &dto.AnswerRequest{Query: "   "})
	assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
}

func TestAnswerWithoutResults(t *testing.T) {
	f := newAssistantFixture(t, &fakeRetriever{}, &fakeLLM{answer: "Sorry, I do not know."})

	res, err := f.service.Answer(context.Background(), 1, &dto.AnswerRequest{Query: "is there a pool?"})
	require.NoError(t, err)

	assert.Equal(t, "Sorry, I do not know.", res.Answer)
	assert.Equal(t, 0, res.SourcesCount)
	assert.False(t, res.UsedContext)
	assert.False(t, res.Degraded)
	assert.Nil(t, res.SessionId, "stateless answers carry no session")
}

func TestAnswerHydratesRetrievedContext(t *testing.T) {
	retrieverStub := &fakeRetriever{}
	f := newAssistantFixture(t, retrieverStub, &fakeLLM{answer: "The laundry is in the basement."})
	item := f.seedKnowledge(t, "facilities", "Laundry room is in the basement, open 8-22.")
	retrieverStub.results = []retrieval.Result{{ItemID: item.Id, Score: 0.9, Rank: 1}}

	res, err := f.service.Answer(context.Background(), 1, &dto.AnswerRequest{Query: "where is the laundry?"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.SourcesCount)
	assert.True(t, res.UsedContext)
	assert.Equal(t, "The laundry is in the basement.", res.Answer)
}

func TestAnswerSessionModePersistsTurns(t *testing.T) {
	f := newAssistantFixture(t, &fakeRetriever{}, &fakeLLM{answer: "Quiet hours start at 23:00."})

	res, err := f.service.Answer(context.Background(), 42, &dto.AnswerRequest{
		Query:       "when do quiet hours start?",
		SessionMode: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.SessionId)

	turns, err := f.service.SessionTurns(context.Background(), *res.SessionId, 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.TurnRoleUser, turns[0].Role)
	assert.Equal(t, "when do quiet hours start?", turns[0].Content)
	assert.Equal(t, entity.TurnRoleAssistant, turns[1].Role)
	assert.Equal(t, "Quiet hours start at 23:00.", turns[1].Content)

	// A follow-up lands in the same session.
	res2, err := f.service.Answer(context.Background(), 42, &dto.AnswerRequest{
		Query:       "and when do they end?",
		SessionMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, *res.SessionId, *res2.SessionId)
}

func TestAnswerDegradesOnGenerationFailure(t *testing.T) {
	retrieverStub := &fakeRetriever{}
	f := newAssistantFixture(t, retrieverStub, &fakeLLM{err: errors.New("connection refused")})
	item := f.seedKnowledge(t, "rules", "Guests must leave by 23:00.")
	retrieverStub.results = []retrieval.Result{{ItemID: item.Id, Score: 0.8, Rank: 1}}

	res, err := f.service.Answer(context.Background(), 7, &dto.AnswerRequest{
		Query:       "how late can guests stay?",
		SessionMode: true,
	})
	require.NoError(t, err, "generation failure must not surface as an error")

	assert.True(t, res.Degraded)
	assert.NotEmpty(t, res.Answer)
	assert.Contains(t, res.Answer, "Guests must leave by 23:00.")

	// Failed exchanges are never persisted.
	require.NotNil(t, res.SessionId)
	turns, err := f.service.SessionTurns(context.Background(), *res.SessionId, 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAnswerSurvivesRetrieverError(t *testing.T) {
	retrieverErr := &retrieval.Error{Op: "search", Err: errors.New("index offline")}
	f := newAssistantFixture(t, &fakeRetriever{err: retrieverErr}, &fakeLLM{answer: "I am not sure."})

	res, err := f.service.Answer(context.Background(), 1, &dto.AnswerRequest{Query: "where is the gym?"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SourcesCount)
	assert.False(t, res.UsedContext)
	assert.Equal(t, "I am not sure.", res.Answer)
}

// repoItemSource feeds the lexical retriever straight from the
// in-memory knowledge repository.
type repoItemSource struct {
	factory *memory.RepositoryFactory
}

func (s *repoItemSource) All(ctx context.Context) ([]*entity.KnowledgeItem, error) {
	return s.factory.NewUnitOfWork(ctx).KnowledgeRepository().All(ctx)
}

func TestAnswerEndToEndLexical(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	store := factory.NewUnitOfWork(context.Background()).SessionStore()
	manager := session.NewManager(store, 30*time.Minute, session.DefaultMaxTurnLen)
	svc := NewAssistantService(
		factory,
		retrieval.NewLexicalRetriever(&repoItemSource{factory: factory}),
		contextbuild.NewAssembler(2000),
		manager,
		history.NewLoader(store, 10),
		&fakeLLM{answer: "The dormitory is at 2 Moskvorechye St."},
		GenerationOptions{MaxTokens: 512},
		nil,
		3,
		logger.NewNop(),
	)

	repo := factory.NewUnitOfWork(context.Background()).KnowledgeRepository()
	require.NoError(t, repo.Create(context.Background(), &entity.KnowledgeItem{
		Text:      "Dormitory address: 2 Moskvorechye St",
		Category:  "Address",
		Tags:      []string{"address"},
		CreatedAt: time.Now(),
	}))

	res, err := svc.Answer(context.Background(), 1, &dto.AnswerRequest{Query: "What is the address?"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SourcesCount)
	assert.True(t, res.UsedContext)
	assert.NotEmpty(t, res.Answer)

	// A query with no lexical overlap still yields a graceful answer.
	res, err = svc.Answer(context.Background(), 1, &dto.AnswerRequest{Query: "How do I cook borscht?"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SourcesCount)
	assert.False(t, res.UsedContext)
	assert.NotEmpty(t, res.Answer)
}

func TestSessionLifecycleOperations(t *testing.T) {
	f := newAssistantFixture(t, &fakeRetriever{}, &fakeLLM{answer: "ok"})
	ctx := context.Background()

	res, err := f.service.Answer(ctx, 9, &dto.AnswerRequest{Query: "hello", SessionMode: true})
	require.NoError(t, err)
	require.NotNil(t, res.SessionId)

	active, err := f.service.ActiveSession(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, *res.SessionId, active.Id)

	require.NoError(t, f.service.EndSession(ctx, *res.SessionId))
	active, err = f.service.ActiveSession(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, active)

	require.NoError(t, f.service.DeleteSession(ctx, *res.SessionId))
	turns, err := f.service.SessionTurns(ctx, *res.SessionId, 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
