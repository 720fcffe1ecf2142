package util

import (
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/ai"
	oai "github.com/eldarhac/GraphMind/pkg/ai/ollama"
	gai "github.com/eldarhac/GraphMind/pkg/ai/openai"
)

// NewAIClientFromEnv builds the model client selected by AI_ADAPTER
// ("openai" or "ollama", default "openai").
func NewAIClientFromEnv() (ai.GraphAIClient, error) {
	adapter := GetEnvString("AI_ADAPTER", "openai")
	parallel := int64(GetEnvNumeric("AI_PARALLEL_REQ", 4))
	timeout := GetEnvDuration("AI_TIMEOUT", 0)
	embedDim := GetEnvNumeric("AI_EMBED_DIM", 1536)

	switch adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel:  GetEnv("AI_EMBED_MODEL"),
			ChatModel:       GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: GetEnv("AI_EXTRACT_MODEL"),
			EmbeddingDim:    embedDim,

			BaseURL: GetEnv("AI_CHAT_URL"),
			ApiKey:  GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: parallel,
			Timeout:               timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil
	case "openai":
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			EmbeddingModel:  GetEnv("AI_EMBED_MODEL"),
			ChatModel:       GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: GetEnv("AI_EXTRACT_MODEL"),
			EmbeddingDim:    embedDim,

			EmbeddingURL: GetEnv("AI_EMBED_URL"),
			EmbeddingKey: GetEnv("AI_EMBED_KEY"),
			ChatURL:      GetEnv("AI_CHAT_URL"),
			ChatKey:      GetEnv("AI_CHAT_KEY"),

			ParallelRequests: parallel,
			Timeout:          timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", adapter)
	}
}
