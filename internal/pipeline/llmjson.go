package pipeline

import (
	"encoding/json"
	"strings"
)

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// normalizeStringBreaks replaces raw line breaks occurring inside JSON string
// literals with spaces. Services sometimes emit multi-line string values,
// which strict JSON rejects as control characters.
func normalizeStringBreaks(text string) string {
	var (
		sb       strings.Builder
		inString bool
		escape   bool
	)
	sb.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escape {
			escape = false
			sb.WriteByte(c)
			continue
		}

		switch {
		case c == '\\' && inString:
			escape = true
			sb.WriteByte(c)
		case c == '"':
			inString = !inString
			sb.WriteByte(c)
		case inString && (c == '\n' || c == '\r'):
			sb.WriteByte(' ')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// parseLenient unmarshals semi-structured service output: strict parse of
// the cleaned text first, then exactly one retry after normalizing line
// breaks inside string values. The error is the strict pass's when both fail.
func parseLenient(text string, v any) error {
	cleaned := cleanJSON(text)
	strictErr := json.Unmarshal([]byte(cleaned), v)
	if strictErr == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(normalizeStringBreaks(cleaned)), v); err == nil {
		return nil
	}
	return strictErr
}
