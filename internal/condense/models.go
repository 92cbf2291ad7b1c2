package condense

import "strings"

var knownModels = map[Provider][]string{
	ProviderGemini: {
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	},
	ProviderOpenAI: {
		"o1", "o3-mini", "o1-pro", "o3",
		"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
		"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	},
	ProviderAnthropic: {
		"claude-haiku-4-5",
		"claude-sonnet-4-5",
		"claude-opus-4-5",
	},
}

// reports whether model is one we know works for provider; an empty model
// selects the provider default and is always valid
func ValidModel(provider Provider, model string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return true
	}
	for _, m := range knownModels[provider] {
		if strings.EqualFold(m, model) {
			return true
		}
	}
	return false
}

func KnownModels(provider Provider) []string {
	return append([]string(nil), knownModels[provider]...)
}
