package driven

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// LimitCounter names one of the daily counters.
type LimitCounter string

const (
	// CounterSearch counts all searches.
	CounterSearch LimitCounter = "search"
	// CounterAI counts AI generations.
	CounterAI LimitCounter = "ai"
)

// LimitStore persists per-user, per-day search counters.
type LimitStore interface {
	// Get returns the row for (userID, date), or domain.ErrNotFound.
	Get(ctx context.Context, userID, date string) (*domain.UserSearchLimits, error)

	// Increment atomically adds one to a counter, inserting the row
	// with that counter at 1 if it does not exist. Returns the stored row.
	Increment(ctx context.Context, userID, date string, counter LimitCounter) (*domain.UserSearchLimits, error)
}
