package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// disallowedChars matches everything except ASCII word characters,
	// whitespace and the German accented letters.
	disallowedChars = regexp.MustCompile(`[^\w\säöüß]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// minKeywordLength is the shortest word kept by the normaliser.
const minKeywordLength = 3

// Normalize turns a free-text query into the canonical cache key.
// Word order is preserved: "mother city" and "city mother" are distinct keys.
func Normalize(raw string) string {
	return strings.Join(ExtractKeywords(raw), " ")
}

// ExtractKeywords performs the same cleanup as Normalize but returns
// the surviving words individually, in query order.
func ExtractKeywords(raw string) []string {
	cleaned := strings.ToLower(raw)
	cleaned = disallowedChars.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	words := strings.Split(cleaned, " ")
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minKeywordLength {
			keywords = append(keywords, w)
		}
	}
	return keywords
}
