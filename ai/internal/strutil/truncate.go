// Package strutil holds the small string helpers shared by the ai packages.
package strutil

import "strings"

// Truncate shortens s to maxLen runes, appending "..." when it cuts.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// FoldTitle canonicalizes a task title for exact matching: trimmed,
// lower-cased, inner whitespace collapsed.
func FoldTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// StripCodeFence removes a surrounding markdown code fence such as ```json.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// JSONObject returns the outermost {...} span of s after stripping a code
// fence, or "" when s holds no object.
func JSONObject(s string) string {
	s = StripCodeFence(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
