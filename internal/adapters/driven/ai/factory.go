// Package ai provides factory functions for creating the generation service adapter.
package ai

import (
	"context"
	"fmt"
	"time"

	openaillm "github.com/custodia-labs/lumen/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the generation service from settings.
// Returns nil if no API key is configured.
func CreateLLMService(settings domain.AISettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}
	svc, err := openaillm.NewLLMService(openaillm.ConfigFromSettings(settings))
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// ValidateLLMConfig creates a service and pings it. Intended for
// 'lumen config set-key' to reject a bad key before it is stored.
func ValidateLLMConfig(ctx context.Context, settings domain.AISettings) error {
	if !settings.IsConfigured() {
		return domain.ErrMissingAPIKey
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("generation service unreachable: %w", err)
	}
	return nil
}
