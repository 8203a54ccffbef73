package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/logger"
)

// HistoryTracker records what users were shown and searched, and derives
// the set of quotes that must be withheld from fresh results.
type HistoryTracker struct {
	history   driven.HistoryStore
	favorites driven.FavoriteStore
	settings  domain.SearchSettings
	now       Clock
}

// NewHistoryTracker creates a history tracker.
func NewHistoryTracker(
	history driven.HistoryStore,
	favorites driven.FavoriteStore,
	settings domain.SearchSettings,
	now Clock,
) *HistoryTracker {
	return &HistoryTracker{
		history:   history,
		favorites: favorites,
		settings:  settings,
		now:       clockOrDefault(now),
	}
}

// RecordUserSearch records that userID searched contextID. A repeat of the
// same context inside the dedup window only refreshes the timestamp.
func (h *HistoryTracker) RecordUserSearch(ctx context.Context, userID, contextID string) error {
	if userID == "" || contextID == "" {
		return nil
	}
	now := h.now()

	last, err := h.history.LastSearch(ctx, userID, contextID)
	switch {
	case err == nil:
		if now.Sub(last.SearchedAt) < h.settings.SearchDedupWindow {
			logger.Debug("Search of context %s by %s repeated within window, refreshing", contextID, userID)
			last.SearchedAt = now
			if err := h.history.SaveSearch(ctx, *last); err != nil {
				return fmt.Errorf("refresh user search: %w", err)
			}
			return nil
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return fmt.Errorf("get last user search: %w", err)
	}

	search := domain.UserSearch{
		ID:         uuid.New().String(),
		UserID:     userID,
		ContextID:  contextID,
		SearchedAt: now,
	}
	if err := h.history.SaveSearch(ctx, search); err != nil {
		return fmt.Errorf("save user search: %w", err)
	}
	return nil
}

// RecordShown records that quoteIDs were shown to userID today.
func (h *HistoryTracker) RecordShown(ctx context.Context, userID string, kind domain.HistoryKind, quoteIDs ...string) error {
	if userID == "" {
		return nil
	}
	now := h.now()
	date := domain.DateKey(now)

	for _, id := range quoteIDs {
		err := h.history.RecordShown(ctx, domain.UserQuoteHistory{
			ID:        uuid.New().String(),
			UserID:    userID,
			QuoteID:   id,
			ShownDate: date,
			Kind:      kind,
			ShownAt:   now,
		})
		if err != nil {
			return fmt.Errorf("record shown quote %s: %w", id, err)
		}
	}
	return nil
}

// Exclusions returns the IDs of the user's favourites plus every quote shown
// to them inside the reuse window (30 days free, 180 days premium).
func (h *HistoryTracker) Exclusions(ctx context.Context, userID string, premium bool) (map[string]struct{}, error) {
	excluded := make(map[string]struct{})
	if userID == "" {
		return excluded, nil
	}

	favs, err := h.favorites.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	for _, f := range favs {
		excluded[f.QuoteID] = struct{}{}
	}

	since := h.windowStart(premium)
	shown, err := h.history.ShownSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list shown quotes: %w", err)
	}
	for _, id := range shown {
		excluded[id] = struct{}{}
	}

	logger.Debug("Exclusions for %s: %d favorites, %d shown since %s", userID, len(favs), len(shown), since)
	return excluded, nil
}

// windowStart is the first date still inside the reuse window.
func (h *HistoryTracker) windowStart(premium bool) string {
	days := h.settings.ReuseDays(premium)
	return domain.DateKey(h.now().Add(-time.Duration(days) * 24 * time.Hour))
}

// DailyShownToday returns the ID of the daily quote already shown to userID
// today, or "" when none was.
func (h *HistoryTracker) DailyShownToday(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	rows, err := h.history.ShownOn(ctx, userID, domain.DateKey(h.now()), domain.HistoryDaily)
	if err != nil {
		return "", fmt.Errorf("list daily history: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].QuoteID, nil
}
