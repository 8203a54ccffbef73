package domain

import "time"

// SearchCategory is a static taxonomy entry such as "relationship".
type SearchCategory struct {
	// ID is the stable identifier, usually the category name.
	ID string `json:"id"`

	// Name is the canonical (English) name.
	Name string `json:"name"`

	// DisplayNames maps language to a human readable label.
	DisplayNames map[Language]string `json:"displayNames"`

	// Keywords maps language to the keywords scored against queries.
	Keywords map[Language][]string `json:"keywords"`
}

// DisplayName returns the label for lang, falling back to Name.
func (c *SearchCategory) DisplayName(lang Language) string {
	if name := c.DisplayNames[lang]; name != "" {
		return name
	}
	return c.Name
}

// SynonymGroup is a curated list of related terms per language.
type SynonymGroup struct {
	ID    string                `json:"id"`
	Name  string                `json:"name"`
	Terms map[Language][]string `json:"terms"`
}

// SearchContext is a distinct normalised search query.
// At most one context exists per (NormalizedQuery, Language).
type SearchContext struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	NormalizedQuery string    `json:"normalizedQuery"`
	CategoryID      string    `json:"categoryId,omitempty"`
	Language        Language  `json:"language"`
	SearchCount     int       `json:"searchCount"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUsedAt      time.Time `json:"lastUsedAt"`
}

// QuoteContextMapping links a quote to a context with a relevance score.
// At most one mapping exists per (QuoteID, ContextID).
type QuoteContextMapping struct {
	ID             string    `json:"id"`
	QuoteID        string    `json:"quoteId"`
	ContextID      string    `json:"contextId"`
	RelevanceScore int       `json:"relevanceScore"`
	IsAIGenerated  bool      `json:"isAiGenerated"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ClampScore bounds a relevance score to 0..100.
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

// SearchSource describes how a search result set was produced.
type SearchSource string

const (
	// SourceCached means an exact or synonym context match.
	SourceCached SearchSource = "cached"
	// SourceCategory means the matched category's contexts.
	SourceCategory SearchSource = "category"
	// SourceDatabase means the full-text fallback scan.
	SourceDatabase SearchSource = "database"
	// SourceAI means freshly generated quotes.
	SourceAI SearchSource = "ai"
	// SourceRateLimited means the caller's daily quota was exhausted.
	SourceRateLimited SearchSource = "rate_limited"
	// SourceInsufficient means no tier reached the minimum result count.
	SourceInsufficient SearchSource = "insufficient"
)

// ScoredQuote is a quote paired with its relevance score for a query.
type ScoredQuote struct {
	Quote Quote   `json:"quote"`
	Score float64 `json:"score"`
}

// LookupRequest is the input of the tiered cache lookup.
type LookupRequest struct {
	Query     string
	Language  Language
	UserID    string
	IsPremium bool
}

// LookupResult is the output of the tiered cache lookup.
type LookupResult struct {
	// Quotes are the selected results, best first.
	Quotes []ScoredQuote

	// Source is the tier that produced the results.
	Source SearchSource

	// NeedsAI is set when no tier reached the minimum result count.
	NeedsAI bool

	// Category is the matched category, if any.
	Category *SearchCategory

	// NormalizedQuery is the canonical form of the query.
	NormalizedQuery string

	// ExactContextID is the ID of the exactly matching context, if any.
	ExactContextID string

	// Excluded holds the quote IDs withheld from this user.
	Excluded map[string]struct{}
}

// SearchRequest is the input of performSmartSearch.
type SearchRequest struct {
	// Query is the raw free-text query.
	Query string

	// Language is the search language.
	Language Language

	// Session is the server-validated caller. A zero Session is anonymous.
	Session Session
}

// SmartSearchResult is the output of performSmartSearch.
type SmartSearchResult struct {
	Quotes         []Quote         `json:"quotes"`
	Source         SearchSource    `json:"source"`
	RateLimit      RateLimitStatus `json:"rateLimit"`
	WasAIGenerated bool            `json:"wasAIGenerated"`
	Category       string          `json:"category,omitempty"`
	ContextID      string          `json:"contextId,omitempty"`
	Error          string          `json:"error,omitempty"`
}
