package driven

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// ContextStore persists search contexts and their quote mappings.
//
// Uniqueness of (NormalizedQuery, Language) and of (QuoteID, ContextID)
// is enforced by the store, not by callers.
type ContextStore interface {
	// RecordContext upserts a context for a search that just happened.
	// On conflict the existing row's counter is incremented and LastUsedAt
	// refreshed; a new row starts with SearchCount 1. Returns the stored row.
	RecordContext(ctx context.Context, c domain.SearchContext) (*domain.SearchContext, error)

	// EnsureContext returns the existing context for (NormalizedQuery, Language)
	// or inserts c unchanged. The counter is never incremented.
	EnsureContext(ctx context.Context, c domain.SearchContext) (*domain.SearchContext, error)

	// GetContext retrieves a context by ID.
	GetContext(ctx context.Context, id string) (*domain.SearchContext, error)

	// FindContext retrieves the context for an exact normalised query.
	// Returns domain.ErrNotFound when absent.
	FindContext(ctx context.Context, normalizedQuery string, lang domain.Language) (*domain.SearchContext, error)

	// RecentContexts returns up to limit contexts in lang, most recently used first.
	RecentContexts(ctx context.Context, lang domain.Language, limit int) ([]domain.SearchContext, error)

	// ContextsByCategory returns up to limit contexts in a category, most used first.
	ContextsByCategory(ctx context.Context, categoryID string, limit int) ([]domain.SearchContext, error)

	// UpsertMapping inserts a mapping or, on conflict, keeps the higher
	// relevance score. Returns the stored row.
	UpsertMapping(ctx context.Context, m domain.QuoteContextMapping) (*domain.QuoteContextMapping, error)

	// MappingsForContexts returns all mappings of the given contexts.
	MappingsForContexts(ctx context.Context, contextIDs []string) ([]domain.QuoteContextMapping, error)
}
