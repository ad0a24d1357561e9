package agents

import (
	"context"
	"encoding/json"
	"sync"

	"rumbo/pkg/llm"
)

// stubClient replays scripted responses per capability, in call order.
type stubClient struct {
	mu sync.Mutex

	jsonScript []scriptStep
	chatScript []scriptStep
	toolScript []toolStep

	jsonCalls int
	chatCalls int
	toolCalls int
}

type scriptStep struct {
	payload string
	err     error
}

type toolStep struct {
	message llm.Message
	err     error
}

func (c *stubClient) Chat(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.chatScript[scriptIndex(c.chatCalls, len(c.chatScript))]
	c.chatCalls++
	if step.err != nil {
		return llm.Message{}, step.err
	}
	return llm.Message{Role: llm.RoleAssistant, Content: step.payload}, nil
}

func (c *stubClient) ChatJSON(ctx context.Context, messages []llm.Message, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.jsonScript[scriptIndex(c.jsonCalls, len(c.jsonScript))]
	c.jsonCalls++
	if step.err != nil {
		return step.err
	}
	return json.Unmarshal([]byte(step.payload), out)
}

func (c *stubClient) ChatWithTools(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.toolScript[scriptIndex(c.toolCalls, len(c.toolScript))]
	c.toolCalls++
	if step.err != nil {
		return llm.Message{}, step.err
	}
	return step.message, nil
}

func (c *stubClient) Close() error { return nil }

// scriptIndex consumes steps in order and sticks on the last one.
func scriptIndex(call, scriptLen int) int {
	if call >= scriptLen {
		return scriptLen - 1
	}
	return call
}
