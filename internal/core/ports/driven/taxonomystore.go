package driven

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// TaxonomyStore persists the static categories and synonym groups.
// Both lists are returned in a stable order (by ID).
type TaxonomyStore interface {
	SaveCategory(ctx context.Context, c domain.SearchCategory) error
	ListCategories(ctx context.Context) ([]domain.SearchCategory, error)
	SaveSynonymGroup(ctx context.Context, g domain.SynonymGroup) error
	ListSynonymGroups(ctx context.Context) ([]domain.SynonymGroup, error)
}

// Resetter wipes all persisted data. Administrative use only.
type Resetter interface {
	Reset(ctx context.Context) error
}

// SessionResolver validates a bearer token and returns the caller's session.
// Returns domain.ErrUnauthenticated for unknown tokens.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.Session, error)
}
