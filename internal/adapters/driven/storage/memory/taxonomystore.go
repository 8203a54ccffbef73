package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// Ensure TaxonomyStore implements the interface.
var _ driven.TaxonomyStore = (*TaxonomyStore)(nil)

// TaxonomyStore is an in-memory implementation of driven.TaxonomyStore.
type TaxonomyStore struct {
	mu         sync.RWMutex
	categories map[string]domain.SearchCategory
	groups     map[string]domain.SynonymGroup
}

// NewTaxonomyStore creates a new in-memory taxonomy store.
func NewTaxonomyStore() *TaxonomyStore {
	return &TaxonomyStore{
		categories: make(map[string]domain.SearchCategory),
		groups:     make(map[string]domain.SynonymGroup),
	}
}

// SaveCategory stores or replaces a category.
func (s *TaxonomyStore) SaveCategory(_ context.Context, c domain.SearchCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

// ListCategories returns all categories ordered by ID.
func (s *TaxonomyStore) ListCategories(_ context.Context) ([]domain.SearchCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SearchCategory, 0, len(s.categories))
	for _, c := range s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SaveSynonymGroup stores or replaces a synonym group.
func (s *TaxonomyStore) SaveSynonymGroup(_ context.Context, g domain.SynonymGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
	return nil
}

// ListSynonymGroups returns all synonym groups ordered by ID.
func (s *TaxonomyStore) ListSynonymGroups(_ context.Context) ([]domain.SynonymGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SynonymGroup, 0, len(s.groups))
	for _, g := range s.groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *TaxonomyStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make(map[string]domain.SearchCategory)
	s.groups = make(map[string]domain.SynonymGroup)
}
