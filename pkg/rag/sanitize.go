package rag

import (
	"regexp"
	"strings"
)

var (
	unsafeChars      = regexp.MustCompile(`[^\w\-.()]`)
	repeatUnderscore = regexp.MustCompile(`_+`)
)

// SanitizeFilename reduces a user-supplied filename to storage-safe ASCII.
// Non-ASCII runes are dropped, unsafe characters become underscores,
// runs of underscores collapse, and leading/trailing underscores and dots
// are trimmed. An empty result falls back to "unnamed_file".
func SanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if r < 128 {
			b.WriteRune(r)
		}
	}

	s := unsafeChars.ReplaceAllString(b.String(), "_")
	s = repeatUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")

	if s == "" {
		return "unnamed_file"
	}
	return s
}
