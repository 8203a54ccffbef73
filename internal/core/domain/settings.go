package domain

import "time"

// SearchSettings holds the tunable constants of the search and caching engine.
type SearchSettings struct {
	// MinCachedResults is the number of quotes a tier must find to be accepted.
	MinCachedResults int

	// MaxResults is the number of quotes returned to the client.
	MaxResults int

	// CrossMatchMultiplier scales scores found through synonym cross-matches.
	CrossMatchMultiplier float64

	// RecentContextScan is how many recent contexts tier 1 scans for cross-matches.
	RecentContextScan int

	// CategoryContextScan is how many contexts tier 2 reads for a category.
	CategoryContextScan int

	// FullTextScan is how many quotes tier 3 scans.
	FullTextScan int

	// FullTextScore is the flat score given to full-text matches.
	FullTextScore float64

	// HighBand and MediumBand are the lower bounds of the shuffle bands.
	HighBand   float64
	MediumBand float64

	// FreeReuseDays and PremiumReuseDays are the history exclusion windows.
	FreeReuseDays    int
	PremiumReuseDays int

	// MaxSearchesPerDay caps all searches; MaxAISearchesPerDay caps AI generations.
	MaxSearchesPerDay   int
	MaxAISearchesPerDay int

	// AIQuoteCount is how many quotes a search generation asks for.
	AIQuoteCount int

	// DefaultAIRelevance is used when the model omits its relevance score.
	DefaultAIRelevance int

	// Related query mapping penalties and floor.
	RelatedSameLanguagePenalty  int
	RelatedCrossLanguagePenalty int
	RelatedScoreFloor           int

	// AvoidListSize caps how many excluded quotes are quoted back to the model.
	AvoidListSize int

	// SearchDedupWindow collapses repeated recordings of the same search.
	SearchDedupWindow time.Duration
}

// DefaultSearchSettings returns the production defaults.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		MinCachedResults:            3,
		MaxResults:                  5,
		CrossMatchMultiplier:        0.9,
		RecentContextScan:           100,
		CategoryContextScan:         10,
		FullTextScan:                200,
		FullTextScore:               50,
		HighBand:                    80,
		MediumBand:                  60,
		FreeReuseDays:               30,
		PremiumReuseDays:            180,
		MaxSearchesPerDay:           10,
		MaxAISearchesPerDay:         10,
		AIQuoteCount:                5,
		DefaultAIRelevance:          80,
		RelatedSameLanguagePenalty:  10,
		RelatedCrossLanguagePenalty: 15,
		RelatedScoreFloor:           50,
		AvoidListSize:               10,
		SearchDedupWindow:           60 * time.Second,
	}
}

// ReuseDays returns the history exclusion window for a tier.
func (s SearchSettings) ReuseDays(premium bool) int {
	if premium {
		return s.PremiumReuseDays
	}
	return s.FreeReuseDays
}

// AISettings configures the generation service.
type AISettings struct {
	// APIKey authenticates against the chat-completion endpoint.
	APIKey string

	// BaseURL is the API base URL (OpenAI compatible).
	BaseURL string

	// Model is the chat model name.
	Model string

	// Timeout bounds a single request. Zero uses the adapter default.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls. Zero uses the adapter default.
	RequestsPerSecond float64
}

// IsConfigured returns true if an API key is present.
func (s *AISettings) IsConfigured() bool {
	return s != nil && s.APIKey != ""
}
