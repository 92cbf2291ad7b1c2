package condense

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Condenser using OpenAI Chat Completions
type OpenAICondenser struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAICondenser(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAICondenser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAICondenser{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (c *OpenAICondenser) Condense(ctx context.Context, items []Item) ([]Result, error) {
	return runBatches(ctx, items, c.options, c.condenseBatch)
}

func (c *OpenAICondenser) condenseBatch(ctx context.Context, items []Item) ([]Result, error) {
	completion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(BuildPrompt(c.options, items)),
			},
			Model: c.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("condense request failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}
	reply := completion.Choices[0].Message.Content
	if reply == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}
	return parseReply(reply, items)
}
