package condense

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// parses a model reply and checks it answers exactly the items asked
func parseReply(reply string, items []Item) ([]Result, error) {
	reply = cleanJSONResponse(reply)
	if reply == "" {
		return nil, fmt.Errorf("empty reply")
	}

	results, err := extractResults(reply)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(reply, 200),
		)
	}
	if err := checkResults(results, items); err != nil {
		return nil, err
	}
	return results, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = codeFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// escapes backslashes that do not start a valid JSON escape, so a stray
// "\N" from an ASS-minded model survives decoding as a literal
func fixInvalidEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte('\\')
			b.WriteByte(next)
		default:
			b.WriteString(`\\`)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// finds the first JSON value in text that decodes to a result list, either
// bare or wrapped in an object
func extractResults(text string) ([]Result, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtractResults(raw); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid result JSON found in response")
}

func tryExtractResults(raw json.RawMessage) ([]Result, bool) {
	var results []Result
	if err := json.Unmarshal(raw, &results); err == nil && hasText(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"results", "items", "data", "subtitles"} {
		field, ok := wrapper[key]
		if !ok {
			continue
		}
		var inner []Result
		if err := json.Unmarshal(field, &inner); err == nil && hasText(inner) {
			return inner, true
		}
	}
	for _, field := range wrapper {
		var inner []Result
		if err := json.Unmarshal(field, &inner); err == nil && hasText(inner) {
			return inner, true
		}
	}
	return nil, false
}

func hasText(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

// every item answered once, nothing extra, nothing blank
func checkResults(results []Result, items []Item) error {
	if len(results) != len(items) {
		return fmt.Errorf("expected %d results, got %d", len(items), len(results))
	}

	want := make(map[int]bool, len(items))
	for _, it := range items {
		want[it.Index] = true
	}
	for _, r := range results {
		if !want[r.Index] {
			return fmt.Errorf("unexpected or duplicate result index %d", r.Index)
		}
		delete(want, r.Index)
		if strings.TrimSpace(r.Text) == "" {
			return fmt.Errorf("empty text for index %d", r.Index)
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
