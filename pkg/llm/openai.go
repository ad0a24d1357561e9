package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"rumbo/pkg/utils"
)

type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: 90 * time.Second,
	}
}

func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return Message{}, fmt.Errorf("%w: openai chat: %v", utils.ErrTransient, err)
	}
	if len(resp.Choices) == 0 {
		return Message{}, fmt.Errorf("%w: openai returned no choices", utils.ErrGeneration)
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []Message, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: openai chat: %v", utils.ErrTransient, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: openai returned no choices", utils.ErrGeneration)
	}

	content := CleanJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: response does not match schema: %v", utils.ErrGeneration, err)
	}
	return nil
}

func (c *OpenAIClient) ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	oaTools := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		oaTools = append(oaTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
		Tools:    oaTools,
	})
	if err != nil {
		return Message{}, fmt.Errorf("%w: openai chat with tools: %v", utils.ErrTransient, err)
	}
	if len(resp.Choices) == 0 {
		return Message{}, fmt.Errorf("%w: openai returned no choices", utils.ErrGeneration)
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func (c *OpenAIClient) Close() error { return nil }

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		converted = append(converted, msg)
	}
	return converted
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) Message {
	msg := Message{
		Role:    m.Role,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg
}
