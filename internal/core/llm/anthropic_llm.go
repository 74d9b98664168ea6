package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type anthropicGenerator struct {
	client *anthropic.Client
	model  string
}

func newAnthropicGenerator(apiKey, model string) (*anthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is empty")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &anthropicGenerator{client: anthropic.NewClient(apiKey), model: model}, nil
}

func (g *anthropicGenerator) generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(g.model),
		System:      systemPrompt,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(userPrompt)},
		MaxTokens:   2048,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic generate: empty response")
	}
	return resp.Content[0].GetText(), nil
}

func (g *anthropicGenerator) close() error { return nil }
