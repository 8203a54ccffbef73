package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
)

// Ensure TaxonomyService implements the interface.
var _ driving.TaxonomyService = (*TaxonomyService)(nil)

// TaxonomyService serves the static categories and synonym groups.
type TaxonomyService struct {
	store driven.TaxonomyStore
}

// NewTaxonomyService creates a taxonomy service.
func NewTaxonomyService(store driven.TaxonomyStore) *TaxonomyService {
	return &TaxonomyService{store: store}
}

// ListCategories returns all search categories.
func (s *TaxonomyService) ListCategories(ctx context.Context) ([]domain.SearchCategory, error) {
	return s.store.ListCategories(ctx)
}

// FindSynonyms returns terms plus every term of a synonym group they
// match in lang, lowercased and sorted.
func (s *TaxonomyService) FindSynonyms(ctx context.Context, terms []string, lang domain.Language) ([]string, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	groups, err := s.store.ListSynonymGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list synonym groups: %w", err)
	}

	expanded := ExpandKeywords(trimAll(terms), lang, groups)
	out := make([]string, 0, len(expanded))
	for term := range expanded {
		out = append(out, term)
	}
	sort.Strings(out)
	return out, nil
}

// trimAll drops blank entries and surrounding whitespace.
func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
