package factory

import (
	"fmt"

	"dorm-assistant-be/pkg/llm"
	"dorm-assistant-be/pkg/llm/cloudru"
	"dorm-assistant-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewProvider(baseURL, modelName), nil
	case "cloudru":
		if apiKey == "" {
			return nil, fmt.Errorf("cloudru provider requires an api key")
		}
		return cloudru.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
