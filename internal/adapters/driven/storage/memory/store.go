package memory

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Resetter = (*Store)(nil)

// Store bundles one of each in-memory store so they can be reset together.
type Store struct {
	Quotes    *QuoteStore
	Contexts  *ContextStore
	Limits    *LimitStore
	History   *HistoryStore
	Favorites *FavoriteStore
	Taxonomy  *TaxonomyStore
}

// NewStore creates an empty set of in-memory stores.
func NewStore() *Store {
	return &Store{
		Quotes:    NewQuoteStore(),
		Contexts:  NewContextStore(),
		Limits:    NewLimitStore(),
		History:   NewHistoryStore(),
		Favorites: NewFavoriteStore(),
		Taxonomy:  NewTaxonomyStore(),
	}
}

// Reset empties every store.
func (s *Store) Reset(_ context.Context) error {
	s.Quotes.reset()
	s.Contexts.reset()
	s.Limits.reset()
	s.History.reset()
	s.Favorites.reset()
	s.Taxonomy.reset()
	return nil
}
