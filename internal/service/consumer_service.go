package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dorm-assistant-be/internal/dto"
	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/repository/specification"
	"dorm-assistant-be/internal/repository/unitofwork"
	"dorm-assistant-be/pkg/embedding"
	"dorm-assistant-be/pkg/retrieval/hnswindex"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	hnswIndex         *hnswindex.Index // nil when pgvector handles search
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	hnswIndex *hnswindex.Index,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		hnswIndex:         hnswIndex,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedKnowledgeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("embed-consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	item, err := uow.KnowledgeRepository().FindOne(ctx, specification.ByItemIDs{IDs: []int64{payload.KnowledgeItemId}})
	if err != nil {
		cs.logger.Error("embed-consumer", "failed to load knowledge item", map[string]interface{}{
			"knowledge_item_id": payload.KnowledgeItemId,
			"error":             err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}
	if item == nil {
		cs.logger.Warn("embed-consumer", "knowledge item not found, skipping", map[string]interface{}{
			"knowledge_item_id": payload.KnowledgeItemId,
		})
		msg.Ack()
		return
	}

	content := embeddingContent(item)

	resp, err := cs.embeddingProvider.Generate(ctx, content, embedding.TaskTypeDocument)
	if err != nil {
		cs.logger.Error("embed-consumer", "embedding generation failed", map[string]interface{}{
			"knowledge_item_id": item.Id,
			"error":             err.Error(),
		})
		msg.Nack()
		return
	}

	emb := &entity.KnowledgeEmbedding{
		KnowledgeItemId: item.Id,
		Values:          resp.Embedding.Values,
		CreatedAt:       time.Now(),
	}
	if err := uow.KnowledgeEmbeddingRepository().Upsert(ctx, emb); err != nil {
		cs.logger.Error("embed-consumer", "failed to persist embedding", map[string]interface{}{
			"knowledge_item_id": item.Id,
			"error":             err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.hnswIndex != nil {
		if err := cs.hnswIndex.Add(item.Id, resp.Embedding.Values); err != nil {
			cs.logger.Warn("embed-consumer", "failed to index embedding in memory", map[string]interface{}{
				"knowledge_item_id": item.Id,
				"error":             err.Error(),
			})
		}
	}

	cs.logger.Info("embed-consumer", "knowledge item embedded", map[string]interface{}{
		"knowledge_item_id": item.Id,
		"dimensions":        len(resp.Embedding.Values),
	})
	msg.Ack()
}

// embeddingContent renders the item the way it should be matched against
// queries: text first, then category and tags as weak signals.
func embeddingContent(item *entity.KnowledgeItem) string {
	return fmt.Sprintf("%s\n\nCategory: %s\nTags: %s",
		item.Text,
		item.Category,
		strings.Join(item.Tags, ", "),
	)
}
