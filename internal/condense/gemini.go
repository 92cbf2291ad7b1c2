package condense

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// implements Condenser using Google Gemini
type GeminiCondenser struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiCondenser(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiCondenser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiCondenser{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (c *GeminiCondenser) Condense(ctx context.Context, items []Item) ([]Result, error) {
	return runBatches(ctx, items, c.options, c.condenseBatch)
}

func (c *GeminiCondenser) condenseBatch(ctx context.Context, items []Item) ([]Result, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(BuildPrompt(c.options, items))},
			genai.RoleUser,
		),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("condense request failed: %w", err)
	}

	reply, err := geminiText(resp)
	if err != nil {
		return nil, err
	}
	return parseReply(reply, items)
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("no text in Gemini response")
}
