package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// ==================== Limit Store ====================

// limitStore implements driven.LimitStore.
type limitStore struct {
	store *Store
}

var _ driven.LimitStore = (*limitStore)(nil)

const limitColumns = `user_id, date, search_count, ai_search_count, updated_at`

// Get returns the counters for (userID, date).
func (s *limitStore) Get(ctx context.Context, userID, date string) (*domain.UserSearchLimits, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+limitColumns+` FROM user_search_limits
		WHERE user_id = ? AND date = ?
	`, userID, date)
	l, err := scanLimits(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return l, err
}

// Increment adds one to a counter in a single upsert statement.
func (s *limitStore) Increment(
	ctx context.Context,
	userID, date string,
	counter driven.LimitCounter,
) (*domain.UserSearchLimits, error) {
	var searches, ai int
	switch counter {
	case driven.CounterSearch:
		searches = 1
	case driven.CounterAI:
		ai = 1
	default:
		return nil, fmt.Errorf("%w: unknown counter %q", domain.ErrInvalidInput, counter)
	}

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO user_search_limits (`+limitColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			search_count = user_search_limits.search_count + excluded.search_count,
			ai_search_count = user_search_limits.ai_search_count + excluded.ai_search_count,
			updated_at = excluded.updated_at
		RETURNING `+limitColumns,
		userID, date, searches, ai, toMillis(time.Now()))

	l, err := scanLimits(row)
	if err != nil {
		return nil, fmt.Errorf("incrementing %s counter: %w", counter, err)
	}
	return l, nil
}

func scanLimits(row rowScanner) (*domain.UserSearchLimits, error) {
	var l domain.UserSearchLimits
	var updatedAt int64
	if err := row.Scan(&l.UserID, &l.Date, &l.SearchCount, &l.AISearchCount, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning limits: %w", err)
	}
	l.UpdatedAt = fromMillis(updatedAt)
	return &l, nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// RecordShown stores an exposure; a repeat on the same day is ignored.
func (s *historyStore) RecordShown(ctx context.Context, h domain.UserQuoteHistory) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO user_quote_history (id, user_id, quote_id, shown_date, kind, shown_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, quote_id, shown_date) DO NOTHING
	`, h.ID, h.UserID, h.QuoteID, h.ShownDate, string(h.Kind), toMillis(h.ShownAt))
	if err != nil {
		return fmt.Errorf("recording shown quote: %w", err)
	}
	return nil
}

// ShownSince returns quote IDs shown on or after sinceDate.
func (s *historyStore) ShownSince(ctx context.Context, userID, sinceDate string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT quote_id FROM user_quote_history
		WHERE user_id = ? AND shown_date >= ?
	`, userID, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return ids, nil
}

// ShownOn returns exposures of one kind on a single date.
func (s *historyStore) ShownOn(
	ctx context.Context,
	userID, date string,
	kind domain.HistoryKind,
) ([]domain.UserQuoteHistory, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, quote_id, shown_date, kind, shown_at FROM user_quote_history
		WHERE user_id = ? AND shown_date = ? AND kind = ?
		ORDER BY shown_at, id
	`, userID, date, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []domain.UserQuoteHistory
	for rows.Next() {
		var h domain.UserQuoteHistory
		var k string
		var shownAt int64
		if err := rows.Scan(&h.ID, &h.UserID, &h.QuoteID, &h.ShownDate, &k, &shownAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		h.Kind = domain.HistoryKind(k)
		h.ShownAt = fromMillis(shownAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return out, nil
}

// LastSearch returns the latest search of a context by a user.
func (s *historyStore) LastSearch(ctx context.Context, userID, contextID string) (*domain.UserSearch, error) {
	var us domain.UserSearch
	var searchedAt int64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, context_id, searched_at FROM user_searches
		WHERE user_id = ? AND context_id = ?
		ORDER BY searched_at DESC
		LIMIT 1
	`, userID, contextID).Scan(&us.ID, &us.UserID, &us.ContextID, &searchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user search: %w", err)
	}
	us.SearchedAt = fromMillis(searchedAt)
	return &us, nil
}

// SaveSearch inserts a search or refreshes its timestamp.
func (s *historyStore) SaveSearch(ctx context.Context, us domain.UserSearch) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO user_searches (id, user_id, context_id, searched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET searched_at = excluded.searched_at
	`, us.ID, us.UserID, us.ContextID, toMillis(us.SearchedAt))
	if err != nil {
		return fmt.Errorf("saving user search: %w", err)
	}
	return nil
}

// ==================== Favorite Store ====================

// favoriteStore implements driven.FavoriteStore.
type favoriteStore struct {
	store *Store
}

var _ driven.FavoriteStore = (*favoriteStore)(nil)

// Add saves a favourite; an existing one is left untouched.
func (s *favoriteStore) Add(ctx context.Context, fav domain.UserFavorite) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO user_favorites (user_id, quote_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, quote_id) DO NOTHING
	`, fav.UserID, fav.QuoteID, toMillis(fav.CreatedAt))
	if err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// Remove deletes a favourite.
func (s *favoriteStore) Remove(ctx context.Context, userID, quoteID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM user_favorites WHERE user_id = ? AND quote_id = ?", userID, quoteID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// List returns a user's favourites, newest first.
func (s *favoriteStore) List(ctx context.Context, userID string) ([]domain.UserFavorite, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT user_id, quote_id, created_at FROM user_favorites
		WHERE user_id = ?
		ORDER BY created_at DESC, quote_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var favs []domain.UserFavorite
	for rows.Next() {
		var f domain.UserFavorite
		var createdAt int64
		if err := rows.Scan(&f.UserID, &f.QuoteID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		f.CreatedAt = fromMillis(createdAt)
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return favs, nil
}
