// Package condense asks an LLM to shorten caption lines that are too wide to
// read comfortably.
package condense

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// one caption to shorten; Index is the segment's 0-based position
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Condenser interface {
	Condense(ctx context.Context, items []Item) ([]Result, error)
}

// adapts a plain function to Condenser
type Func func(ctx context.Context, items []Item) ([]Result, error)

func (f Func) Condense(ctx context.Context, items []Item) ([]Result, error) {
	return f(ctx, items)
}

type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const (
	DefaultBatchSize   = 20
	DefaultConcurrency = 3
)

type Options struct {
	Model       string
	MaxWidth    int // target cells per line
	MaxLines    int
	Prompt      string // extra instructions appended to the prompt
	BatchSize   int    // items per API request
	Concurrency int    // requests in flight
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

// creates a Condenser for provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Condenser, error) {
	if opts.MaxWidth <= 0 {
		return nil, fmt.Errorf("max width must be positive")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiCondenser(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAICondenser(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicCondenser(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported condense provider: %s", provider)
	}
}

// environment variable holding the key for provider
func APIKeyEnv(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// BuildPrompt creates the rewrite prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	maxLines := opts.MaxLines
	if maxLines <= 0 {
		maxLines = 2
	}

	var sb strings.Builder
	sb.WriteString("Shorten the following subtitle texts so they are easier to read on screen.\n\n")

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Keep the meaning and the language of each text.\n")
	fmt.Fprintf(&sb, "2. Every line must be at most %d characters wide.\n", opts.MaxWidth)
	fmt.Fprintf(&sb, "3. Use at most %d lines, separated by \\n.\n", maxLines)
	sb.WriteString("4. Never return an empty text.\n")
	sb.WriteString("5. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("6. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("7. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("8. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", opts.Prompt)
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the shortened JSON array only:")

	return sb.String()
}
