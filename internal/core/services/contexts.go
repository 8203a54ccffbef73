package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// ContextService records search contexts and quote mappings.
type ContextService struct {
	contexts driven.ContextStore
	now      Clock
}

// NewContextService creates a context service.
func NewContextService(contexts driven.ContextStore, now Clock) *ContextService {
	return &ContextService{contexts: contexts, now: clockOrDefault(now)}
}

// SaveSearchContext records a search for query. Repeats of the same
// normalised query and language increment the existing context's counter.
func (s *ContextService) SaveSearchContext(
	ctx context.Context,
	query string,
	lang domain.Language,
	categoryID string,
) (*domain.SearchContext, error) {
	normalized := Normalize(query)
	if normalized == "" {
		return nil, fmt.Errorf("%w: query %q has no keywords", domain.ErrInvalidInput, query)
	}

	now := s.now()
	stored, err := s.contexts.RecordContext(ctx, domain.SearchContext{
		ID:              uuid.New().String(),
		Query:           strings.TrimSpace(query),
		NormalizedQuery: normalized,
		CategoryID:      categoryID,
		Language:        lang,
		SearchCount:     1,
		CreatedAt:       now,
		LastUsedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("record search context: %w", err)
	}
	return stored, nil
}

// AddQuoteContextMapping links a quote to a context. A repeated link keeps
// the higher of the two scores.
func (s *ContextService) AddQuoteContextMapping(
	ctx context.Context,
	quoteID, contextID string,
	score int,
	aiGenerated bool,
) (*domain.QuoteContextMapping, error) {
	if quoteID == "" || contextID == "" {
		return nil, fmt.Errorf("%w: mapping needs quote and context", domain.ErrInvalidInput)
	}
	stored, err := s.contexts.UpsertMapping(ctx, domain.QuoteContextMapping{
		ID:             uuid.New().String(),
		QuoteID:        quoteID,
		ContextID:      contextID,
		RelevanceScore: domain.ClampScore(score),
		IsAIGenerated:  aiGenerated,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert mapping: %w", err)
	}
	return stored, nil
}
