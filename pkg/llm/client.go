package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON
}

// Tool describes a callable function exposed to the model. Parameters is a
// JSON-schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Client is the capability surface the pipeline consumes. ChatJSON guarantees
// the response unmarshals into out or fails with a generation error; callers
// treat that as retryable. ChatWithTools may return a message carrying
// parallel tool calls.
type Client interface {
	Chat(ctx context.Context, messages []Message) (Message, error)
	ChatJSON(ctx context.Context, messages []Message, out interface{}) error
	ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (Message, error)
	Close() error
}

// NewClient builds the configured provider. Tool calling is only available on
// the openai provider; the pipeline gates the web-search branch on that.
func NewClient(provider, apiKey, model string) (Client, error) {
	switch strings.ToLower(provider) {
	case "openai", "":
		return NewOpenAIClient(apiKey, model), nil
	case "gemini":
		return NewGeminiClient(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
