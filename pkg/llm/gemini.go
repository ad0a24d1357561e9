package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rumbo/pkg/utils"
)

// GeminiClient serves the chat and structured-output contract on Gemini
// models. Tool calling stays on the openai provider.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: 90 * time.Second,
	}, nil
}

func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (Message, error) {
	content, err := c.generate(ctx, messages, false)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: RoleAssistant, Content: content}, nil
}

func (c *GeminiClient) ChatJSON(ctx context.Context, messages []Message, out interface{}) error {
	content, err := c.generate(ctx, messages, true)
	if err != nil {
		return err
	}
	content = CleanJSON(content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: response does not match schema: %v", utils.ErrGeneration, err)
	}
	return nil
}

func (c *GeminiClient) ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	return Message{}, errors.New("gemini provider does not support tool calling")
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) generate(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0.2)
	m.SetTopP(0.5)
	m.SetTopK(20)
	if jsonMode {
		m.ResponseMIMEType = "application/json"
	}

	// Gemini has no per-message roles in this flow; fold the turn log into
	// one prompt the same way the free-tier client did.
	var prompt string
	for _, msg := range messages {
		prompt += msg.Content + "\n\n"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", utils.ErrTransient, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no content", utils.ErrGeneration)
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
