package service

import (
	"context"

	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/websocket"
	"dorm-assistant-be/pkg/events"
	pktNats "dorm-assistant-be/pkg/nats"
)

// IStreamService bridges bus events to connected websocket clients so a
// resident's open dashboard sees answers as they are produced.
type IStreamService interface {
	Start() error
}

type streamService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewStreamService(subscriber *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) IStreamService {
	return &streamService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *streamService) Start() error {
	return s.subscriber.Subscribe(
		events.TypeAnswerProduced,
		"answer-stream",
		s.handleAnswerEvent,
	)
}

func (s *streamService) handleAnswerEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userId, ok := payload["user_id"].(float64)
	if !ok {
		s.logger.Warn("stream-service", "answer event missing user_id", map[string]interface{}{
			"subject": event.EventType(),
		})
		return nil // malformed events are dropped, not retried
	}

	s.hub.Send(int64(userId), "answer", payload)
	return nil
}
