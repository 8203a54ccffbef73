package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// Ensure ContextStore implements the interface.
var _ driven.ContextStore = (*ContextStore)(nil)

type contextKey struct {
	normalized string
	lang       domain.Language
}

type mappingKey struct {
	quoteID   string
	contextID string
}

// ContextStore is an in-memory implementation of driven.ContextStore.
// A single mutex guards both maps so upserts are atomic.
type ContextStore struct {
	mu       sync.RWMutex
	contexts map[string]domain.SearchContext
	byQuery  map[contextKey]string
	mappings map[mappingKey]domain.QuoteContextMapping
}

// NewContextStore creates a new in-memory context store.
func NewContextStore() *ContextStore {
	return &ContextStore{
		contexts: make(map[string]domain.SearchContext),
		byQuery:  make(map[contextKey]string),
		mappings: make(map[mappingKey]domain.QuoteContextMapping),
	}
}

// RecordContext inserts a context with count 1 or bumps an existing one.
func (s *ContextStore) RecordContext(_ context.Context, c domain.SearchContext) (*domain.SearchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := contextKey{c.NormalizedQuery, c.Language}
	if id, ok := s.byQuery[key]; ok {
		existing := s.contexts[id]
		existing.SearchCount++
		existing.LastUsedAt = nowIfZero(c.LastUsedAt)
		if c.CategoryID != "" {
			existing.CategoryID = c.CategoryID
		}
		s.contexts[id] = existing
		return &existing, nil
	}

	c.SearchCount = 1
	c.CreatedAt = nowIfZero(c.CreatedAt)
	c.LastUsedAt = nowIfZero(c.LastUsedAt)
	s.contexts[c.ID] = c
	s.byQuery[key] = c.ID
	return &c, nil
}

// EnsureContext returns the existing context or inserts c unchanged.
func (s *ContextStore) EnsureContext(_ context.Context, c domain.SearchContext) (*domain.SearchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := contextKey{c.NormalizedQuery, c.Language}
	if id, ok := s.byQuery[key]; ok {
		existing := s.contexts[id]
		return &existing, nil
	}
	c.CreatedAt = nowIfZero(c.CreatedAt)
	c.LastUsedAt = nowIfZero(c.LastUsedAt)
	s.contexts[c.ID] = c
	s.byQuery[key] = c.ID
	return &c, nil
}

// GetContext retrieves a context by ID.
func (s *ContextStore) GetContext(_ context.Context, id string) (*domain.SearchContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contexts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// FindContext retrieves the context for an exact normalised query.
func (s *ContextStore) FindContext(_ context.Context, normalizedQuery string, lang domain.Language) (*domain.SearchContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byQuery[contextKey{normalizedQuery, lang}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := s.contexts[id]
	return &c, nil
}

// RecentContexts returns contexts in lang, most recently used first.
func (s *ContextStore) RecentContexts(_ context.Context, lang domain.Language, limit int) ([]domain.SearchContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SearchContext, 0)
	for _, c := range s.contexts {
		if c.Language == lang {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastUsedAt.Equal(result[j].LastUsedAt) {
			return result[i].LastUsedAt.After(result[j].LastUsedAt)
		}
		return result[i].ID < result[j].ID
	})
	return truncate(result, limit), nil
}

// ContextsByCategory returns contexts in a category, most used first.
func (s *ContextStore) ContextsByCategory(_ context.Context, categoryID string, limit int) ([]domain.SearchContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SearchContext, 0)
	for _, c := range s.contexts {
		if c.CategoryID == categoryID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SearchCount != result[j].SearchCount {
			return result[i].SearchCount > result[j].SearchCount
		}
		if !result[i].LastUsedAt.Equal(result[j].LastUsedAt) {
			return result[i].LastUsedAt.After(result[j].LastUsedAt)
		}
		return result[i].ID < result[j].ID
	})
	return truncate(result, limit), nil
}

// UpsertMapping inserts a mapping or raises the stored score.
func (s *ContextStore) UpsertMapping(_ context.Context, m domain.QuoteContextMapping) (*domain.QuoteContextMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.RelevanceScore = domain.ClampScore(m.RelevanceScore)
	key := mappingKey{m.QuoteID, m.ContextID}
	if existing, ok := s.mappings[key]; ok {
		if m.RelevanceScore > existing.RelevanceScore {
			existing.RelevanceScore = m.RelevanceScore
			s.mappings[key] = existing
		}
		return &existing, nil
	}
	m.CreatedAt = nowIfZero(m.CreatedAt)
	s.mappings[key] = m
	return &m, nil
}

// MappingsForContexts returns all mappings of the given contexts.
func (s *ContextStore) MappingsForContexts(_ context.Context, contextIDs []string) ([]domain.QuoteContextMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(contextIDs))
	for _, id := range contextIDs {
		wanted[id] = struct{}{}
	}
	result := make([]domain.QuoteContextMapping, 0)
	for _, m := range s.mappings {
		if _, ok := wanted[m.ContextID]; ok {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RelevanceScore != result[j].RelevanceScore {
			return result[i].RelevanceScore > result[j].RelevanceScore
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *ContextStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = make(map[string]domain.SearchContext)
	s.byQuery = make(map[contextKey]string)
	s.mappings = make(map[mappingKey]domain.QuoteContextMapping)
}

func nowIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
