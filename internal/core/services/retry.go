package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/logger"
)

// RetryPolicy bounds retries of transient write failures.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// InitialInterval is the wait after the first failure; it doubles each retry.
	InitialInterval time.Duration

	// MaxInterval caps a single wait.
	MaxInterval time.Duration
}

// DefaultRetryPolicy waits 500ms, then 1000ms, capped at 2000ms, for three attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:        3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Do runs op until it succeeds, the attempts are used up, or ctx is done.
// Invalid input is never retried.
func (p RetryPolicy) Do(ctx context.Context, name string, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if errors.Is(err, domain.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx),
		func(err error, wait time.Duration) {
			logger.Warn("%s failed (attempt %d/%d): %v, retrying in %s", name, attempt, attempts, err, wait)
		})
}
