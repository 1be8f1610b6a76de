package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

func cleanJSON(text string) (json.RawMessage, error) {
	js := stripCodeFences(text)
	if json.Valid([]byte(js)) {
		return json.RawMessage(js), nil
	}
	if s := findFirstJSON(js); s != "" && json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	return nil, fmt.Errorf("%w: %d bytes without a JSON value", ErrMalformed, len(text))
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// findFirstJSON returns the first balanced {...} or [...] span, ignoring
// brackets inside string literals.
func findFirstJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false
	var openCh, closeCh byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if start == -1 {
			switch c {
			case '{':
				openCh, closeCh = '{', '}'
			case '[':
				openCh, closeCh = '[', ']'
			default:
				continue
			}
			start = i
			depth = 1
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
