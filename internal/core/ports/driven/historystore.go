package driven

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// HistoryStore persists what was shown to and searched by users.
type HistoryStore interface {
	// RecordShown stores an exposure row. A second row for the same
	// (UserID, QuoteID, ShownDate) is ignored.
	RecordShown(ctx context.Context, h domain.UserQuoteHistory) error

	// ShownSince returns the IDs of quotes shown to userID on or after sinceDate.
	ShownSince(ctx context.Context, userID, sinceDate string) ([]string, error)

	// ShownOn returns the exposures of one kind for userID on date.
	ShownOn(ctx context.Context, userID, date string, kind domain.HistoryKind) ([]domain.UserQuoteHistory, error)

	// LastSearch returns the latest search of contextID by userID, or domain.ErrNotFound.
	LastSearch(ctx context.Context, userID, contextID string) (*domain.UserSearch, error)

	// SaveSearch inserts or updates a search row by ID.
	SaveSearch(ctx context.Context, s domain.UserSearch) error
}

// FavoriteStore persists user favourites.
type FavoriteStore interface {
	// Add saves a favourite. Adding an existing favourite is a no-op.
	Add(ctx context.Context, fav domain.UserFavorite) error

	// Remove deletes a favourite.
	Remove(ctx context.Context, userID, quoteID string) error

	// List returns a user's favourites, newest first.
	List(ctx context.Context, userID string) ([]domain.UserFavorite, error)
}
