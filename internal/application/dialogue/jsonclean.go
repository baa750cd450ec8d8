package dialogue

import "strings"

// CleanJSONResponse normalizes raw provider output into a parseable JSON
// string. Models wrap objects in code fences or surround them with prose;
// this strips both. The function is idempotent: cleaning already-clean JSON
// returns it unchanged.
func CleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripCodeFence(s)
	if obj, ok := extractJSONObject(s); ok {
		s = obj
	}
	return strings.TrimSpace(s)
}

// stripCodeFence removes a leading ``` marker (with or without a language
// tag) and a trailing ``` marker when present.
func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		rest := s[3:]
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 && isFenceTag(rest[:idx]) {
			rest = rest[idx+1:]
		}
		s = rest
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// isFenceTag reports whether the first fence line is a language tag such as
// "json" rather than payload.
func isFenceTag(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if len(line) > 16 {
		return false
	}
	for _, r := range line {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// extractJSONObject locates the first '{' and scans forward tracking brace
// depth until the matching '}'. Braces inside string literals are ignored.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
