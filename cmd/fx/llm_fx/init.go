package llm_fx

import (
	"log"
	"os"

	"go.uber.org/fx"

	"rumbo/pkg/llm"
)

var Module = fx.Provide(provideLLMClient, provideEmbedder)

func provideLLMClient() llm.Client {
	client, err := llm.NewClient(
		os.Getenv("LLM_PROVIDER"),
		os.Getenv("LLM_API_KEY"),
		os.Getenv("LLM_MODEL"),
	)
	if err != nil {
		log.Fatalf("Failed to build LLM client: %v", err)
	}
	return client
}

func provideEmbedder() llm.Embedder {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		key = os.Getenv("LLM_API_KEY")
	}
	return llm.NewOpenAIEmbedder(key)
}
