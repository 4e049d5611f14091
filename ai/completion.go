// Package ai generates assistant replies through an OpenAI-compatible
// completion backend.
package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"parlor/errors"
)

const systemPrompt = `You are a helpful AI chat assistant in a shared room.
Here is some past conversation for context:
%s
Respond helpfully and naturally.`

type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a completion client. An empty baseURL targets the
// public OpenAI endpoint; anything OpenAI-compatible works.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Generate produces one reply for a user message, seeded with the room's
// recent conversation as memory context.
func (c *Client) Generate(ctx context.Context, memoryContext, userMessage string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPrompt, memoryContext),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMessage,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrAssistantUnavailable, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.ErrAssistantUnavailable
	}
	return resp.Choices[0].Message.Content, nil
}
