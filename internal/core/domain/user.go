package domain

import "time"

// Session is the server-validated identity of a caller.
// A Session with an empty UserID is anonymous.
type Session struct {
	UserID           string    `json:"userId"`
	IsPremium        bool      `json:"isPremium"`
	PremiumExpiresAt time.Time `json:"premiumExpiresAt,omitempty"`
}

// Anonymous reports whether the session has no user.
func (s Session) Anonymous() bool {
	return s.UserID == ""
}

// Premium reports whether the premium tier is active at now.
// A zero expiry means the subscription does not expire.
func (s Session) Premium(now time.Time) bool {
	if !s.IsPremium {
		return false
	}
	return s.PremiumExpiresAt.IsZero() || s.PremiumExpiresAt.After(now)
}

// DateKey formats t as the ISO calendar date used for per-day rows.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// UserSearchLimits holds one user's counters for one calendar day.
type UserSearchLimits struct {
	UserID        string    `json:"userId"`
	Date          string    `json:"date"`
	SearchCount   int       `json:"searchCount"`
	AISearchCount int       `json:"aiSearchCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RateLimitStatus is the quota view returned by checkRateLimit.
type RateLimitStatus struct {
	SearchCount   int  `json:"searchCount"`
	AISearchCount int  `json:"aiSearchCount"`
	MaxSearches   int  `json:"maxSearches"`
	MaxAISearches int  `json:"maxAiSearches"`
	CanSearch     bool `json:"canSearch"`
	CanUseAI      bool `json:"canUseAI"`
	Remaining     int  `json:"remaining"`
}

// HistoryKind distinguishes how a quote was shown.
type HistoryKind string

const (
	// HistoryDaily records a daily quote exposure.
	HistoryDaily HistoryKind = "daily"
	// HistorySearch records a search result exposure.
	HistorySearch HistoryKind = "search"
)

// UserQuoteHistory records that a quote was shown to a user on a day.
// At most one row exists per (UserID, QuoteID, ShownDate).
type UserQuoteHistory struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	QuoteID   string      `json:"quoteId"`
	ShownDate string      `json:"shownDate"`
	Kind      HistoryKind `json:"kind"`
	ShownAt   time.Time   `json:"shownAt"`
}

// UserSearch records that a user searched a context.
type UserSearch struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ContextID  string    `json:"contextId"`
	SearchedAt time.Time `json:"searchedAt"`
}

// UserFavorite is a quote a user explicitly saved.
type UserFavorite struct {
	UserID    string    `json:"userId"`
	QuoteID   string    `json:"quoteId"`
	CreatedAt time.Time `json:"createdAt"`
}
