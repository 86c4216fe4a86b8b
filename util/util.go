package util

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup from API descriptions and unescapes entities.
func StripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

// FirstSentences keeps the first n ". "-separated sentences and terminates them with a period.
// An empty text stays empty.
func FirstSentences(s string, n int) string {
	if s == "" || n <= 0 {
		return ""
	}
	parts := strings.Split(s, ". ")
	if len(parts) > n {
		parts = parts[:n]
	}
	out := strings.Join(parts, ". ")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
