// internal/util/util.go
package util

import (
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_.]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// WriteFile writes data to a file with 0o644 permissions.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// OneLine collapses newlines and repeated whitespace so long model output fits on a single console line.
func OneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Slugify converts a model identifier into a filesystem-friendly slug.
// "anthropic:claude-3-5-haiku" becomes "anthropic_claude-3-5-haiku".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(":", "_", "/", "_").Replace(s)
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_.")
	if s == "" {
		return "model"
	}
	return s
}
