package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/logger"
)

// RateLimiter tracks per-user daily quotas for searches and AI generations.
// Both caps are checked independently.
type RateLimiter struct {
	limits   driven.LimitStore
	settings domain.SearchSettings
	now      Clock
}

// NewRateLimiter creates a rate limiter over a limit store.
func NewRateLimiter(limits driven.LimitStore, settings domain.SearchSettings, now Clock) *RateLimiter {
	return &RateLimiter{
		limits:   limits,
		settings: settings,
		now:      clockOrDefault(now),
	}
}

// Check reads today's counters for userID. A missing row means zero counts.
func (r *RateLimiter) Check(ctx context.Context, userID string) (domain.RateLimitStatus, error) {
	if userID == "" {
		return domain.RateLimitStatus{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	row, err := r.limits.Get(ctx, userID, domain.DateKey(r.now()))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.RateLimitStatus{}, fmt.Errorf("get search limits: %w", err)
	}

	var searches, aiSearches int
	if row != nil {
		searches, aiSearches = row.SearchCount, row.AISearchCount
	}
	return r.status(searches, aiSearches), nil
}

// IncrementSearch consumes one unit of the total search quota.
func (r *RateLimiter) IncrementSearch(ctx context.Context, userID string) error {
	return r.increment(ctx, userID, driven.CounterSearch)
}

// IncrementAISearch consumes one unit of the AI quota.
func (r *RateLimiter) IncrementAISearch(ctx context.Context, userID string) error {
	return r.increment(ctx, userID, driven.CounterAI)
}

func (r *RateLimiter) increment(ctx context.Context, userID string, counter driven.LimitCounter) error {
	row, err := r.limits.Increment(ctx, userID, domain.DateKey(r.now()), counter)
	if err != nil {
		return fmt.Errorf("increment %s count: %w", counter, err)
	}
	logger.Debug("Quota for %s on %s: searches=%d ai=%d", userID, row.Date, row.SearchCount, row.AISearchCount)
	return nil
}

func (r *RateLimiter) status(searches, aiSearches int) domain.RateLimitStatus {
	remaining := r.settings.MaxSearchesPerDay - searches
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitStatus{
		SearchCount:   searches,
		AISearchCount: aiSearches,
		MaxSearches:   r.settings.MaxSearchesPerDay,
		MaxAISearches: r.settings.MaxAISearchesPerDay,
		CanSearch:     searches < r.settings.MaxSearchesPerDay,
		CanUseAI:      aiSearches < r.settings.MaxAISearchesPerDay,
		Remaining:     remaining,
	}
}
