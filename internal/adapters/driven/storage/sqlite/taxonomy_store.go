package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// ==================== Taxonomy Store ====================

// taxonomyStore implements driven.TaxonomyStore.
type taxonomyStore struct {
	store *Store
}

var _ driven.TaxonomyStore = (*taxonomyStore)(nil)

// SaveCategory stores or replaces a category.
func (s *taxonomyStore) SaveCategory(ctx context.Context, c domain.SearchCategory) error {
	names, err := marshalJSON(c.DisplayNames)
	if err != nil {
		return fmt.Errorf("marshalling display names: %w", err)
	}
	keywords, err := marshalJSON(c.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO search_categories (id, name, display_names, keywords)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			display_names = excluded.display_names,
			keywords = excluded.keywords
	`, c.ID, c.Name, names, keywords)
	if err != nil {
		return fmt.Errorf("saving category: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by ID.
func (s *taxonomyStore) ListCategories(ctx context.Context) ([]domain.SearchCategory, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, name, display_names, keywords FROM search_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.SearchCategory
	for rows.Next() {
		var c domain.SearchCategory
		var names, keywords string
		if err := rows.Scan(&c.ID, &c.Name, &names, &keywords); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		if err := unmarshalJSON(names, &c.DisplayNames); err != nil {
			return nil, fmt.Errorf("unmarshalling display names: %w", err)
		}
		if err := unmarshalJSON(keywords, &c.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshalling keywords: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// SaveSynonymGroup stores or replaces a synonym group.
func (s *taxonomyStore) SaveSynonymGroup(ctx context.Context, g domain.SynonymGroup) error {
	terms, err := marshalJSON(g.Terms)
	if err != nil {
		return fmt.Errorf("marshalling terms: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO synonym_groups (id, name, terms)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			terms = excluded.terms
	`, g.ID, g.Name, terms)
	if err != nil {
		return fmt.Errorf("saving synonym group: %w", err)
	}
	return nil
}

// ListSynonymGroups returns all synonym groups ordered by ID.
func (s *taxonomyStore) ListSynonymGroups(ctx context.Context) ([]domain.SynonymGroup, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT id, name, terms FROM synonym_groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying synonym groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.SynonymGroup
	for rows.Next() {
		var g domain.SynonymGroup
		var terms string
		if err := rows.Scan(&g.ID, &g.Name, &terms); err != nil {
			return nil, fmt.Errorf("scanning synonym group: %w", err)
		}
		if err := unmarshalJSON(terms, &g.Terms); err != nil {
			return nil, fmt.Errorf("unmarshalling terms: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating synonym groups: %w", err)
	}
	return groups, nil
}
