package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"dorm-assistant-be/internal/dto"
	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/pkg/apperrors"
	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/repository/specification"
	"dorm-assistant-be/internal/repository/unitofwork"
	"dorm-assistant-be/pkg/retrieval"
)

type IKnowledgeService interface {
	Add(ctx context.Context, req *dto.AddKnowledgeRequest) (*dto.AddKnowledgeResponse, error)
	List(ctx context.Context) ([]*dto.KnowledgeItemResponse, error)
	Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error)
	Search(ctx context.Context, req *dto.SearchKnowledgeRequest) ([]*dto.SearchKnowledgeResult, error)
}

type knowledgeService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	retriever        retrieval.Retriever
	logger           logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	retriever retrieval.Retriever,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		retriever:        retriever,
		logger:           log,
	}
}

func (s *knowledgeService) Add(ctx context.Context, req *dto.AddKnowledgeRequest) (*dto.AddKnowledgeResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.NewValidation("text", "knowledge text must not be empty")
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, apperrors.NewValidation("category", "knowledge category must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	item := entity.KnowledgeItem{
		Text:      req.Text,
		Category:  req.Category,
		Tags:      req.Tags,
		CreatedAt: time.Now(),
	}

	if err := uow.KnowledgeRepository().Create(ctx, &item); err != nil {
		return nil, err
	}

	// Embedding happens asynchronously; lexical retrieval sees the item
	// immediately either way.
	msgPayload := dto.PublishEmbedKnowledgeMessage{
		KnowledgeItemId: item.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.logger.Warn("knowledge-service", "failed to queue embedding job", map[string]interface{}{
			"knowledge_item_id": item.Id,
			"error":             err.Error(),
		})
	}

	return &dto.AddKnowledgeResponse{Id: item.Id}, nil
}

func (s *knowledgeService) List(ctx context.Context) ([]*dto.KnowledgeItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.KnowledgeRepository().All(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.KnowledgeItemResponse, len(items))
	for i, item := range items {
		res[i] = &dto.KnowledgeItemResponse{
			Id:        item.Id,
			Text:      item.Text,
			Category:  item.Category,
			Tags:      item.Tags,
			CreatedAt: item.CreatedAt,
		}
	}
	return res, nil
}

func (s *knowledgeService) Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	stats, err := uow.KnowledgeRepository().Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.KnowledgeStatsResponse{
		TotalCount:       stats.TotalCount,
		CountsByCategory: stats.CountsByCategory,
	}, nil
}

func (s *knowledgeService) Search(ctx context.Context, req *dto.SearchKnowledgeRequest) ([]*dto.SearchKnowledgeResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.NewValidation("query", "search query must not be empty")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 3
	}

	results, err := s.retriever.Retrieve(ctx, req.Query, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []*dto.SearchKnowledgeResult{}, nil
	}

	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ItemID
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.KnowledgeRepository().FindAll(ctx, specification.ByItemIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	byId := make(map[int64]*entity.KnowledgeItem, len(items))
	for _, item := range items {
		byId[item.Id] = item
	}

	res := make([]*dto.SearchKnowledgeResult, 0, len(results))
	for _, r := range results {
		item, ok := byId[r.ItemID]
		if !ok {
			continue
		}
		res = append(res, &dto.SearchKnowledgeResult{
			Id:       item.Id,
			Category: item.Category,
			Text:     item.Text,
			Score:    r.Score,
			Rank:     r.Rank,
		})
	}
	return res, nil
}
