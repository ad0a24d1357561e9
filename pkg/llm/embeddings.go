package llm

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"

	"rumbo/pkg/utils"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

type OpenAIEmbedder struct {
	client *openai.Client
}

func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: openai.NewClient(apiKey)}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: embeddings: %v", utils.ErrTransient, err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("%w: embeddings returned no data", utils.ErrTransient)
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}
