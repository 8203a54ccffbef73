package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// Ensure QuoteStore implements the interface.
var _ driven.QuoteStore = (*QuoteStore)(nil)

// QuoteStore is an in-memory implementation of driven.QuoteStore.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

// NewQuoteStore creates a new in-memory quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: make(map[string]domain.Quote),
	}
}

// Save stores or replaces a quote.
func (s *QuoteStore) Save(_ context.Context, quote *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := *quote
	q.Translations = maps.Clone(quote.Translations)
	s.quotes[q.ID] = q
	return nil
}

// Get retrieves a quote by ID.
func (s *QuoteStore) Get(_ context.Context, id string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	q.Translations = maps.Clone(q.Translations)
	return &q, nil
}

// GetMany retrieves the quotes with the given IDs.
func (s *QuoteStore) GetMany(_ context.Context, ids []string) ([]domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Quote, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.quotes[id]; ok {
			q.Translations = maps.Clone(q.Translations)
			result = append(result, q)
		}
	}
	return result, nil
}

// List returns up to limit quotes, newest first.
func (s *QuoteStore) List(_ context.Context, limit int) ([]domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(limit, func(domain.Quote) bool { return true }), nil
}

// ListMissingTranslation returns quotes that have no text in lang.
func (s *QuoteStore) ListMissingTranslation(_ context.Context, lang domain.Language, limit int) ([]domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(limit, func(q domain.Quote) bool {
		return q.Language != lang && !q.HasLanguage(lang)
	}), nil
}

// SetTranslation stores the bundle for lang on a quote.
func (s *QuoteStore) SetTranslation(_ context.Context, id string, lang domain.Language, t domain.Translation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return domain.ErrNotFound
	}
	if q.Language == lang {
		return domain.ErrInvalidInput
	}
	q.Translations = maps.Clone(q.Translations)
	if q.Translations == nil {
		q.Translations = make(map[domain.Language]domain.Translation)
	}
	q.Translations[lang] = t
	s.quotes[id] = q
	return nil
}

// Count returns the number of stored quotes.
func (s *QuoteStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes), nil
}

func (s *QuoteStore) sorted(limit int, keep func(domain.Quote) bool) []domain.Quote {
	result := make([]domain.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		if keep(q) {
			q.Translations = maps.Clone(q.Translations)
			result = append(result, q)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (s *QuoteStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = make(map[string]domain.Quote)
}
