package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"dorm-assistant-be/internal/dto"
	"dorm-assistant-be/internal/pkg/apperrors"
	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/repository/memory"
	"dorm-assistant-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func newKnowledgeService(retriever retrieval.Retriever, publisher IPublisherService) (IKnowledgeService, *memory.RepositoryFactory) {
	factory := memory.NewRepositoryFactory()
	return NewKnowledgeService(factory, publisher, retriever, logger.NewNop()), factory
}

func TestAddValidatesInput(t *testing.T) {
	svc, _ := newKnowledgeService(&fakeRetriever{}, &fakePublisher{})

	tests := []struct {
		name string
		req  *dto.AddKnowledgeRequest
	}{
		{name: "empty text", req: &dto.AddKnowledgeRequest{Text: "  ", Category: "rules"}},
		{name: "empty category", req: &dto.AddKnowledgeRequest{Text: "Quiet hours start at 23:00.", Category: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.req)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestAddAssignsSequentialIdsAndQueuesEmbedding(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newKnowledgeService(&fakeRetriever{}, publisher)

	first, err := svc.Add(context.Background(), &dto.AddKnowledgeRequest{
		Text:     "Laundry room is in the basement.",
		Category: "facilities",
		Tags:     []string{"laundry", "washing"},
	})
	require.NoError(t, err)
	second, err := svc.Add(context.Background(), &dto.AddKnowledgeRequest{
		Text:     "Rent is due on the 5th.",
		Category: "payments",
	})
	require.NoError(t, err)

	assert.Equal(t, first.Id+1, second.Id)

	require.Len(t, publisher.payloads, 2)
	var msg dto.PublishEmbedKnowledgeMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, first.Id, msg.KnowledgeItemId)
}

func TestAddSurvivesPublishFailure(t *testing.T) {
	svc, factory := newKnowledgeService(&fakeRetriever{}, &fakePublisher{err: errors.New("broker down")})

	res, err := svc.Add(context.Background(), &dto.AddKnowledgeRequest{
		Text:     "WiFi password is on the notice board.",
		Category: "facilities",
	})
	require.NoError(t, err, "a broken embedding queue must not block the write")

	items, err := factory.NewUnitOfWork(context.Background()).KnowledgeRepository().All(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, res.Id, items[0].Id)
}

func TestListAndStats(t *testing.T) {
	svc, _ := newKnowledgeService(&fakeRetriever{}, &fakePublisher{})
	ctx := context.Background()

	for _, req := range []*dto.AddKnowledgeRequest{
		{Text: "Quiet hours start at 23:00.", Category: "rules"},
		{Text: "Guests must sign in.", Category: "rules"},
		{Text: "Rent is due on the 5th.", Category: "payments"},
	} {
		_, err := svc.Add(ctx, req)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalCount)
	assert.Equal(t, int64(2), stats.CountsByCategory["rules"])
	assert.Equal(t, int64(1), stats.CountsByCategory["payments"])
}

func TestSearchHydratesInRetrievalOrder(t *testing.T) {
	retrieverStub := &fakeRetriever{}
	svc, _ := newKnowledgeService(retrieverStub, &fakePublisher{})
	ctx := context.Background()

	first, err := svc.Add(ctx, &dto.AddKnowledgeRequest{Text: "Laundry room is in the basement.", Category: "facilities"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, &dto.AddKnowledgeRequest{Text: "Laundry tokens are sold at reception.", Category: "payments"})
	require.NoError(t, err)

	// The lower id scores lower here, so retrieval order differs from id order.
	retrieverStub.results = []retrieval.Result{
		{ItemID: second.Id, Score: 2, Rank: 1},
		{ItemID: first.Id, Score: 1, Rank: 2},
	}

	results, err := svc.Search(ctx, &dto.SearchKnowledgeRequest{Query: "laundry"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, second.Id, results[0].Id)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "Laundry tokens are sold at reception.", results[0].Text)
	assert.Equal(t, first.Id, results[1].Id)
}

func TestSearchValidatesQuery(t *testing.T) {
	svc, _ := newKnowledgeService(&fakeRetriever{}, &fakePublisher{})

	_, err := svc.Search(context.Background(), &dto.SearchKnowledgeRequest{Query: " "})
	assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)

	results, err := svc.Search(context.Background(), &dto.SearchKnowledgeRequest{Query: "borscht"})
	require.NoError(t, err)
	assert.Empty(t, results)
}
