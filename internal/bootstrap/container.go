package bootstrap

import (
	"context"
	"log"
	"time"

	"dorm-assistant-be/internal/config"
	"dorm-assistant-be/internal/controller"
	"dorm-assistant-be/internal/entity"
	"dorm-assistant-be/internal/handler"
	"dorm-assistant-be/internal/pkg/logger"
	"dorm-assistant-be/internal/repository/contract"
	"dorm-assistant-be/internal/repository/implementation"
	"dorm-assistant-be/internal/repository/memory"
	"dorm-assistant-be/internal/repository/unitofwork"
	"dorm-assistant-be/internal/service"
	"dorm-assistant-be/internal/websocket"
	"dorm-assistant-be/pkg/embedding"
	"dorm-assistant-be/pkg/llm"
	"dorm-assistant-be/pkg/llm/factory"
	pktNats "dorm-assistant-be/pkg/nats"
	"dorm-assistant-be/pkg/ragcore/contextbuild"
	"dorm-assistant-be/pkg/ragcore/history"
	"dorm-assistant-be/pkg/ragcore/session"
	"dorm-assistant-be/pkg/retrieval"
	"dorm-assistant-be/pkg/retrieval/hnswindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// embeddingDim matches the vector(768) column and nomic-embed-text output.
const embeddingDim = 768

type Container struct {
	// Controllers
	KnowledgeController controller.IKnowledgeController
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	StreamService   service.IStreamService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	// Exposed for the cleanup command
	AssistantService service.IAssistantService
	Logger           logger.ILogger
}

// NewContainer wires the whole application. A nil db switches every
// store to the in-memory backend.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	var sessionStore contract.SessionStore
	var memFactory *memory.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		sessionStore = implementation.NewSessionStore(db)
	} else {
		memFactory = memory.NewRepositoryFactory()
		uowFactory = memFactory
		sessionStore = memFactory.NewUnitOfWork(context.Background()).SessionStore()
		log.Printf("[INFO] No database configured, using in-memory stores")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbeddingModel,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	baseProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Ai.CloudruAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	llmProvider := llm.NewResilientProvider(baseProvider, llm.ResilientConfig{
		MaxRetries:  cfg.Ai.MaxRetries,
		Backoff:     time.Second,
		CallTimeout: time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
	})
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval
	var hnswIndex *hnswindex.Index
	retriever := buildRetriever(cfg, uowFactory, embeddingProvider, &hnswIndex)

	// 5. RAG Core
	assembler := contextbuild.NewAssembler(cfg.Rag.MaxContextLen)
	sessionManager := session.NewManager(
		sessionStore,
		time.Duration(cfg.Session.TimeoutMinutes)*time.Minute,
		cfg.Session.MaxTurnLen,
	)
	historyLoader := history.NewLoader(sessionStore, cfg.Rag.HistoryLimit)

	// 6. NATS (auxiliary; the pipeline works without it)
	var natsPub *pktNats.Publisher
	natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 7. Redis + WebSocket Hub
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid Redis URL: %v", err)
		} else {
			rdb = redis.NewClient(opts)
		}
	}
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	hub := websocket.NewHub(rdb, wsLogger)

	// 8. Services
	publisherService := service.NewPublisherService(cfg.App.KnowledgeTopic, pubSub)
	knowledgeService := service.NewKnowledgeService(uowFactory, publisherService, retriever, sysLogger)
	assistantService := service.NewAssistantService(
		uowFactory,
		retriever,
		assembler,
		sessionManager,
		historyLoader,
		llmProvider,
		service.GenerationOptions{
			MaxTokens:   cfg.Ai.MaxTokens,
			Temperature: cfg.Ai.Temperature,
			TopP:        cfg.Ai.TopP,
		},
		natsPub,
		cfg.Rag.TopK,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.KnowledgeTopic,
		uowFactory,
		embeddingProvider,
		hnswIndex,
		sysLogger,
	)

	var streamService service.IStreamService
	if natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, wsLogger); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		streamService = service.NewStreamService(natsSub, hub, wsLogger)
	}

	// 9. Controllers & Handlers
	knowledgeController := controller.NewKnowledgeController(knowledgeService)
	assistantController := controller.NewAssistantController(assistantService)
	streamHandler := handler.NewStreamHandler(hub, wsLogger)

	return &Container{
		KnowledgeController: knowledgeController,
		AssistantController: assistantController,
		ConsumerService:     consumerService,
		StreamService:       streamService,
		StreamHandler:       streamHandler,
		WebSocketHub:        hub,
		AssistantService:    assistantService,
		Logger:              sysLogger,
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "cloudru" {
		return cfg.Ai.CloudruBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}

// buildRetriever assembles the configured strategy. The hnsw backend
// also gets warmed from already-persisted embeddings so restarts do not
// lose the index.
func buildRetriever(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	hnswIndexOut **hnswindex.Index,
) retrieval.Retriever {
	if cfg.Rag.Strategy != "vector" {
		log.Printf("[INFO] Using Retrieval Strategy: LEXICAL")
		return retrieval.NewLexicalRetriever(&knowledgeItemSource{factory: uowFactory})
	}

	var index retrieval.SearchIndex
	if cfg.Rag.IndexBackend == "hnsw" {
		hnsw := hnswindex.New(embeddingDim)
		warmIndex(hnsw, uowFactory)
		*hnswIndexOut = hnsw
		index = hnsw
		log.Printf("[INFO] Using Retrieval Strategy: VECTOR (hnsw, %d items)", hnsw.Len())
	} else {
		index = &embeddingSearchIndex{factory: uowFactory}
		log.Printf("[INFO] Using Retrieval Strategy: VECTOR (pgvector)")
	}

	return retrieval.NewVectorRetriever(
		embedding.NewQueryEmbedder(embeddingProvider),
		index,
		cfg.Rag.SimilarityFloor,
	)
}

func warmIndex(index *hnswindex.Index, uowFactory unitofwork.RepositoryFactory) {
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)
	embeddings, err := uow.KnowledgeEmbeddingRepository().All(ctx)
	if err != nil {
		log.Printf("[WARN] Failed to warm vector index: %v", err)
		return
	}
	for _, emb := range embeddings {
		if err := index.Add(emb.KnowledgeItemId, emb.Values); err != nil {
			log.Printf("[WARN] Failed to index item %d: %v", emb.KnowledgeItemId, err)
		}
	}
}

// knowledgeItemSource feeds the lexical retriever from the repository.
type knowledgeItemSource struct {
	factory unitofwork.RepositoryFactory
}

func (s *knowledgeItemSource) All(ctx context.Context) ([]*entity.KnowledgeItem, error) {
	return s.factory.NewUnitOfWork(ctx).KnowledgeRepository().All(ctx)
}

// embeddingSearchIndex answers nearest-neighbour queries straight from
// the pgvector-backed repository.
type embeddingSearchIndex struct {
	factory unitofwork.RepositoryFactory
}

func (s *embeddingSearchIndex) Search(ctx context.Context, vector []float32, topK int) ([]retrieval.Hit, error) {
	return s.factory.NewUnitOfWork(ctx).KnowledgeEmbeddingRepository().SearchNearest(ctx, vector, topK)
}
