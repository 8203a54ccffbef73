package domain

import "time"

// QuoteSource identifies where a quote came from.
type QuoteSource string

const (
	// QuoteSourceStatic marks quotes loaded from seed data.
	QuoteSourceStatic QuoteSource = "static"
	// QuoteSourceAI marks quotes produced by the generation service.
	QuoteSourceAI QuoteSource = "ai_generated"
)

// Translation is the full content bundle of a quote in a secondary language.
type Translation struct {
	Text        string   `json:"text"`
	Reference   string   `json:"reference,omitempty"`
	Context     string   `json:"context,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Situations  []string `json:"situations,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Quote is a unit of content.
//
// Language is always the primary language. Content in any other language
// lives only in Translations.
type Quote struct {
	ID           string                   `json:"id"`
	Text         string                   `json:"text"`
	Author       string                   `json:"author,omitempty"`
	Reference    string                   `json:"reference,omitempty"`
	Source       QuoteSource              `json:"source"`
	Language     Language                 `json:"language"`
	IsPremium    bool                     `json:"isPremium"`
	Context      string                   `json:"context,omitempty"`
	Explanation  string                   `json:"explanation,omitempty"`
	Situations   []string                 `json:"situations,omitempty"`
	Tags         []string                 `json:"tags,omitempty"`
	Translations map[Language]Translation `json:"translations,omitempty"`
	AIPrompt     string                   `json:"aiPrompt,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
}

// Bundle returns the quote content in the requested language.
// The primary language is served from the quote itself, any other
// language from Translations.
func (q *Quote) Bundle(lang Language) (Translation, bool) {
	if lang == q.Language {
		return Translation{
			Text:        q.Text,
			Reference:   q.Reference,
			Context:     q.Context,
			Explanation: q.Explanation,
			Situations:  q.Situations,
			Tags:        q.Tags,
		}, true
	}
	t, ok := q.Translations[lang]
	return t, ok
}

// HasLanguage reports whether the quote carries non-empty text in lang.
func (q *Quote) HasLanguage(lang Language) bool {
	b, ok := q.Bundle(lang)
	return ok && b.Text != ""
}
