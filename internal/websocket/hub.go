package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"dorm-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "assistant_events"

// Hub fans answer events out to connected residents. Users are keyed by
// the chat platform's numeric id; one user may hold several connections
// (phone + web). Redis pub/sub bridges instances when configured.
type Hub struct {
	clients map[int64][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.bridgeFromRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = append(h.clients[client.userID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.userID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.userID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.userID] = append(clients[:i], clients[i+1:]...)
						close(client.send)
						break
					}
				}
				if len(h.clients[client.userID]) == 0 {
					delete(h.clients, client.userID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers an event payload to every connection of one user, locally
// and via Redis for connections held by other instances.
func (h *Hub) Send(userID int64, eventType string, payload map[string]interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})

	h.deliverLocal(userID, data)

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"target_user_id": strconv.FormatInt(userID, 10),
			"message":        data,
		})
		h.rdb.Publish(context.Background(), clusterChannel, envelope)
	}
}

func (h *Hub) deliverLocal(userID int64, data []byte) {
	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			// Run() closes the send channel during unregister.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

// bridgeFromRedis subscribes to the shared channel; every instance sees
// every envelope and delivers only to users it holds locally.
func (h *Hub) bridgeFromRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Malformed cluster envelope", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := strconv.ParseInt(envelope.TargetUserID, 10, 64)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, envelope.Message)
	}
}
