package normalize

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of a raw completion. Accepted forms, in
// order: the whole text is JSON, a fenced code block contains JSON, or the
// largest balanced {...} span found anywhere in the text parses.
func ExtractJSON(text string) (map[string]interface{}, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	// 1. Raw JSON
	if obj, ok := tryParse(trimmed); ok {
		return obj, true
	}

	// 2. Fenced code block (```json ... ``` or ``` ... ```)
	if fenced, ok := extractFenced(trimmed); ok {
		if obj, ok := tryParse(fenced); ok {
			return obj, true
		}
	}

	// 3. Largest balanced {...} span
	if span, ok := largestBraceSpan(trimmed); ok {
		if obj, ok := tryParse(span); ok {
			return obj, true
		}
	}

	return nil, false
}

func tryParse(s string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func extractFenced(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	rest := s[start+3:]
	// Skip an optional language tag on the fence line
	if nl := strings.Index(rest, "\n"); nl != -1 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "json" || firstLine == "JSON" || firstLine == "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// largestBraceSpan scans for balanced top-level {...} spans and returns the
// longest one. String literals are respected so braces inside values do not
// break the balance count.
func largestBraceSpan(s string) (string, bool) {
	best := ""
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidate := s[start : i+1]
					if len(candidate) > len(best) {
						best = candidate
					}
				}
			}
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}
