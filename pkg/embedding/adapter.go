package embedding

import (
	"context"
	"fmt"
)

// Task types understood by Gemini; other providers ignore them.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// QueryEmbedder exposes an EmbeddingProvider as the single-method embedder
// the retrieval layer consumes, fixing the task type to query retrieval.
type QueryEmbedder struct {
	provider EmbeddingProvider
}

func NewQueryEmbedder(provider EmbeddingProvider) *QueryEmbedder {
	return &QueryEmbedder{provider: provider}
}

func (e *QueryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.provider.Generate(ctx, text, TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding provider returned an empty vector")
	}
	return resp.Embedding.Values, nil
}

// NewEmbeddingProvider selects a provider implementation by name.
func NewEmbeddingProvider(providerType, baseURL, model, apiKey string) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an api key")
		}
		return NewGeminiProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
