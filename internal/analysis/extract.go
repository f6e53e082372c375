package analysis

import (
	"errors"
	"strings"
)

// ExtractJSONArray scans text for the first balanced JSON array and returns
// it. Models tend to wrap JSON in prose or markdown fences; this strips
// fences and walks the text with a bracket counter that respects string
// literals and escapes.
func ExtractJSONArray(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty response text")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.IndexByte(t, '[')
	if start < 0 {
		return "", errors.New("no JSON array in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(t); i++ {
		ch := t[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return t[start : i+1], nil
			}
		}
	}
	return "", errors.New("unbalanced JSON array in response")
}
