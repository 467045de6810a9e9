package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	KnowledgeTopic     string // watermill topic for embedding generation
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider    string // "ollama" or "gemini"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "ollama" or "cloudru"
	LLMModel             string
	CloudruBaseURL       string
	CloudruAPIKey        string
	GeminiAPIKey         string
	MaxRetries           int
	TimeoutSeconds       int
	MaxTokens            int
	Temperature          float64
	TopP                 float64
}

type RagConfig struct {
	Strategy        string // "lexical" or "vector"
	IndexBackend    string // "pgvector" or "hnsw" (vector strategy only)
	TopK            int
	SimilarityFloor float64
	MaxContextLen   int
	HistoryLimit    int
}

type SessionConfig struct {
	TimeoutMinutes int
	RetentionDays  int
	MaxTurnLen     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			KnowledgeTopic:     getEnv("EMBED_KNOWLEDGE_TOPIC_NAME", "EMBED_KNOWLEDGE_ITEM"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			CloudruBaseURL:       getEnv("CLOUDRU_BASE_URL", "https://foundation-models.api.cloud.ru/v1"),
			CloudruAPIKey:        getEnv("CLOUDRU_API_KEY", ""),
			GeminiAPIKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			MaxRetries:           getEnvAsInt("LLM_MAX_RETRIES", 3),
			TimeoutSeconds:       getEnvAsInt("LLM_TIMEOUT_SECONDS", 30),
			MaxTokens:            getEnvAsInt("LLM_MAX_TOKENS", 1000),
			Temperature:          getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			TopP:                 getEnvAsFloat("LLM_TOP_P", 0.9),
		},
		Rag: RagConfig{
			Strategy:        getEnv("RAG_STRATEGY", "lexical"),
			IndexBackend:    getEnv("RAG_INDEX_BACKEND", "pgvector"),
			TopK:            getEnvAsInt("RAG_TOP_K", 3),
			SimilarityFloor: getEnvAsFloat("RAG_SIMILARITY_FLOOR", 0.5),
			MaxContextLen:   getEnvAsInt("RAG_MAX_CONTEXT_LEN", 2000),
			HistoryLimit:    getEnvAsInt("RAG_HISTORY_LIMIT", 10),
		},
		Session: SessionConfig{
			TimeoutMinutes: getEnvAsInt("SESSION_TIMEOUT_MINUTES", 30),
			RetentionDays:  getEnvAsInt("SESSION_RETENTION_DAYS", 7),
			MaxTurnLen:     getEnvAsInt("SESSION_MAX_TURN_LEN", 5000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
