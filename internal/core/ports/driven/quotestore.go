package driven

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// QuoteStore persists quotes.
type QuoteStore interface {
	// Save stores or replaces a quote.
	Save(ctx context.Context, quote *domain.Quote) error

	// Get retrieves a quote by ID.
	Get(ctx context.Context, id string) (*domain.Quote, error)

	// GetMany retrieves the quotes with the given IDs. Unknown IDs are skipped.
	GetMany(ctx context.Context, ids []string) ([]domain.Quote, error)

	// List returns up to limit quotes, newest first.
	List(ctx context.Context, limit int) ([]domain.Quote, error)

	// ListMissingTranslation returns up to limit quotes whose primary language
	// differs from lang and that have no translation for lang.
	ListMissingTranslation(ctx context.Context, lang domain.Language, limit int) ([]domain.Quote, error)

	// SetTranslation stores the translation bundle for lang on a quote.
	SetTranslation(ctx context.Context, id string, lang domain.Language, t domain.Translation) error

	// Count returns the number of stored quotes.
	Count(ctx context.Context) (int, error)
}
