package domain

import (
	"fmt"
	"strings"
)

// Language is a supported content and search language.
type Language string

const (
	// LanguageEnglish is English.
	LanguageEnglish Language = "en"
	// LanguageGerman is German.
	LanguageGerman Language = "de"
)

// SupportedLanguages lists the languages the search normaliser understands.
var SupportedLanguages = []Language{LanguageEnglish, LanguageGerman}

// Valid reports whether the language is supported.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageGerman
}

// Other returns the second supported language.
func (l Language) Other() Language {
	if l == LanguageGerman {
		return LanguageEnglish
	}
	return LanguageGerman
}

// Name returns the English name of the language, used in prompts.
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageGerman:
		return "German"
	default:
		return string(l)
	}
}

// ParseLanguage parses a language code such as "de" or "EN".
// An empty string defaults to English.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LanguageEnglish, nil
	}
	l := Language(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	return l, nil
}
