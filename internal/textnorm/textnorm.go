// internal/textnorm/textnorm.go

// Package textnorm converts raw model output and reference text into the
// canonical forms compared by the metrics in package scoring.
package textnorm

import (
	"regexp"
	"strings"
)

// asciiPunctuation is the ASCII punctuation set replaced by NormalizeText.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	spanFillers = regexp.MustCompile(`\b(internship|experience|role|position|overall|more than|over|at least|about|around|approximately|almost)\b`)
	spanYears   = regexp.MustCompile(`\byears?\b`)
	spanMonths  = regexp.MustCompile(`\bmonths?\b`)
	spanOf      = regexp.MustCompile(`\bof\b`)

	durationPattern = regexp.MustCompile(`\d+\s+(year|month)`)
	yearPattern     = regexp.MustCompile(`\b\d{4}\b`)
)

// NormalizeText lowercases s, replaces every ASCII punctuation character with a
// space, collapses whitespace runs and trims the result.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return ' '
		}
		return r
	}, s)
	return collapseSpaces(s)
}

// NormalizeSpan canonicalizes a short duration expression.
//
// The cleaned string is searched for "<n> year" or "<n> month" first, then for a
// bare four digit number; the first hit is returned. When neither pattern is
// present the cleaned string itself is returned.
func NormalizeSpan(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = spanFillers.ReplaceAllString(s, " ")
	s = spanYears.ReplaceAllString(s, "year")
	s = spanMonths.ReplaceAllString(s, "month")
	s = spanOf.ReplaceAllString(s, " ")
	s = collapseSpaces(s)

	if m := durationPattern.FindString(s); m != "" {
		return m
	}
	if m := yearPattern.FindString(s); m != "" {
		return m
	}
	return s
}

// Text returns v when it is a string and "" for anything else.
func Text(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
