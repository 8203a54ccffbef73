package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// ==================== Context Store ====================

// contextStore implements driven.ContextStore. Uniqueness of contexts and
// mappings is enforced by UNIQUE constraints and ON CONFLICT upserts, so
// concurrent writers never create duplicates.
type contextStore struct {
	store *Store
}

var _ driven.ContextStore = (*contextStore)(nil)

const contextColumns = `id, query, normalized_query, category_id, language, search_count, created_at, last_used_at`

const mappingColumns = `id, quote_id, context_id, relevance_score, is_ai_generated, created_at`

// RecordContext inserts a context with count 1 or bumps an existing one.
func (s *contextStore) RecordContext(ctx context.Context, c domain.SearchContext) (*domain.SearchContext, error) {
	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO search_contexts (`+contextColumns+`)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(normalized_query, language) DO UPDATE SET
			search_count = search_contexts.search_count + 1,
			last_used_at = excluded.last_used_at,
			category_id = CASE WHEN excluded.category_id != '' THEN excluded.category_id
				ELSE search_contexts.category_id END
		RETURNING `+contextColumns,
		c.ID, c.Query, c.NormalizedQuery, c.CategoryID, string(c.Language),
		toMillis(c.CreatedAt), toMillis(c.LastUsedAt))

	stored, err := scanContext(row)
	if err != nil {
		return nil, fmt.Errorf("recording context: %w", err)
	}
	return stored, nil
}

// EnsureContext inserts c unless its normalised query already exists.
func (s *contextStore) EnsureContext(ctx context.Context, c domain.SearchContext) (*domain.SearchContext, error) {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO search_contexts (`+contextColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(normalized_query, language) DO NOTHING
	`, c.ID, c.Query, c.NormalizedQuery, c.CategoryID, string(c.Language), c.SearchCount,
		toMillis(c.CreatedAt), toMillis(c.LastUsedAt))
	if err != nil {
		return nil, fmt.Errorf("ensuring context: %w", err)
	}
	return s.FindContext(ctx, c.NormalizedQuery, c.Language)
}

// GetContext retrieves a context by ID.
func (s *contextStore) GetContext(ctx context.Context, id string) (*domain.SearchContext, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+contextColumns+` FROM search_contexts WHERE id = ?`, id)
	c, err := scanContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// FindContext retrieves the context for an exact normalised query.
func (s *contextStore) FindContext(ctx context.Context, normalizedQuery string, lang domain.Language) (*domain.SearchContext, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+contextColumns+` FROM search_contexts
		WHERE normalized_query = ? AND language = ?
	`, normalizedQuery, string(lang))
	c, err := scanContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// RecentContexts returns contexts in lang, most recently used first.
func (s *contextStore) RecentContexts(ctx context.Context, lang domain.Language, limit int) ([]domain.SearchContext, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+contextColumns+` FROM search_contexts
		WHERE language = ?
		ORDER BY last_used_at DESC, id
		LIMIT ?
	`, string(lang), limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("querying recent contexts: %w", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

// ContextsByCategory returns contexts in a category, most used first.
func (s *contextStore) ContextsByCategory(ctx context.Context, categoryID string, limit int) ([]domain.SearchContext, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+contextColumns+` FROM search_contexts
		WHERE category_id = ?
		ORDER BY search_count DESC, last_used_at DESC, id
		LIMIT ?
	`, categoryID, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("querying category contexts: %w", err)
	}
	defer rows.Close()
	return scanContexts(rows)
}

// UpsertMapping inserts a mapping or raises the stored score.
func (s *contextStore) UpsertMapping(ctx context.Context, m domain.QuoteContextMapping) (*domain.QuoteContextMapping, error) {
	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO quote_context_mappings (`+mappingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(quote_id, context_id) DO UPDATE SET
			relevance_score = MAX(quote_context_mappings.relevance_score, excluded.relevance_score)
		RETURNING `+mappingColumns,
		m.ID, m.QuoteID, m.ContextID, domain.ClampScore(m.RelevanceScore),
		boolToInt(m.IsAIGenerated), toMillis(m.CreatedAt))

	stored, err := scanMapping(row)
	if err != nil {
		return nil, fmt.Errorf("upserting mapping: %w", err)
	}
	return stored, nil
}

// MappingsForContexts returns all mappings of the given contexts.
func (s *contextStore) MappingsForContexts(ctx context.Context, contextIDs []string) ([]domain.QuoteContextMapping, error) {
	if len(contextIDs) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(contextIDs)
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+mappingColumns+` FROM quote_context_mappings
		WHERE context_id IN (`+placeholders+`)
		ORDER BY relevance_score DESC, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var mappings []domain.QuoteContextMapping //nolint:prealloc // size unknown from query
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}
	return mappings, nil
}

func scanContext(row rowScanner) (*domain.SearchContext, error) {
	var c domain.SearchContext
	var lang string
	var createdAt, lastUsedAt int64
	if err := row.Scan(&c.ID, &c.Query, &c.NormalizedQuery, &c.CategoryID, &lang,
		&c.SearchCount, &createdAt, &lastUsedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning context: %w", err)
	}
	c.Language = domain.Language(lang)
	c.CreatedAt = fromMillis(createdAt)
	c.LastUsedAt = fromMillis(lastUsedAt)
	return &c, nil
}

func scanContexts(rows *sql.Rows) ([]domain.SearchContext, error) {
	var contexts []domain.SearchContext //nolint:prealloc // size unknown from query
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contexts: %w", err)
	}
	return contexts, nil
}

func scanMapping(row rowScanner) (*domain.QuoteContextMapping, error) {
	var m domain.QuoteContextMapping
	var ai int
	var createdAt int64
	if err := row.Scan(&m.ID, &m.QuoteID, &m.ContextID, &m.RelevanceScore, &ai, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning mapping: %w", err)
	}
	m.IsAIGenerated = ai != 0
	m.CreatedAt = fromMillis(createdAt)
	return &m, nil
}
