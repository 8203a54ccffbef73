package driving

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// SearchService provides smart search to external actors.
type SearchService interface {
	// SmartSearch runs the full pipeline: quota check, tiered cache lookup,
	// optional AI generation and history recording.
	SmartSearch(ctx context.Context, req domain.SearchRequest) (*domain.SmartSearchResult, error)

	// CheckRateLimit reports the user's quota for today.
	CheckRateLimit(ctx context.Context, userID string) (domain.RateLimitStatus, error)
}

// TaxonomyService exposes the read-only search taxonomy.
type TaxonomyService interface {
	// ListCategories returns all search categories.
	ListCategories(ctx context.Context) ([]domain.SearchCategory, error)

	// FindSynonyms returns the synonym-expanded form of terms, sorted.
	FindSynonyms(ctx context.Context, terms []string, lang domain.Language) ([]string, error)
}

// QuoteService manages daily quotes, favourites and quote maintenance.
type QuoteService interface {
	// DailyQuote returns today's quote for the session, picking one if needed.
	DailyQuote(ctx context.Context, session domain.Session, lang domain.Language) (*domain.Quote, error)

	// AddFavorite saves a quote for a user.
	AddFavorite(ctx context.Context, userID, quoteID string) error

	// RemoveFavorite deletes a saved quote.
	RemoveFavorite(ctx context.Context, userID, quoteID string) error

	// ListFavorites returns a user's saved quotes.
	ListFavorites(ctx context.Context, userID string) ([]domain.Quote, error)

	// BackfillTranslations fills up to limit missing translations into lang.
	// Returns the number of quotes updated.
	BackfillTranslations(ctx context.Context, lang domain.Language, limit int) (int, error)

	// Reset deletes all persisted data.
	Reset(ctx context.Context) error
}
