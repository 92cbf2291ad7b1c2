package condense

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Condenser using Anthropic Claude
type AnthropicCondenser struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicCondenser(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicCondenser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicCondenser{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (c *AnthropicCondenser) Condense(ctx context.Context, items []Item) ([]Result, error) {
	return runBatches(ctx, items, c.options, c.condenseBatch)
}

func (c *AnthropicCondenser) condenseBatch(ctx context.Context, items []Item) ([]Result, error) {
	message, err := c.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(BuildPrompt(c.options, items)),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("condense request failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("no text in Anthropic response")
	}
	return parseReply(sb.String(), items)
}
