package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
	"github.com/custodia-labs/lumen/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService is the top-level smart search pipeline:
// rate-limit check, increment, cache lookup, optional AI generation,
// history recording. Each request runs sequentially.
type SearchService struct {
	limiter   *RateLimiter
	lookup    *CacheLookup
	contexts  *ContextService
	generator *Generator
	history   *HistoryTracker
	quotes    driven.QuoteStore
	settings  domain.SearchSettings
	now       Clock
}

// NewSearchService creates a search service.
func NewSearchService(
	limiter *RateLimiter,
	lookup *CacheLookup,
	contexts *ContextService,
	generator *Generator,
	history *HistoryTracker,
	quotes driven.QuoteStore,
	settings domain.SearchSettings,
	now Clock,
) *SearchService {
	return &SearchService{
		limiter:   limiter,
		lookup:    lookup,
		contexts:  contexts,
		generator: generator,
		history:   history,
		quotes:    quotes,
		settings:  settings,
		now:       clockOrDefault(now),
	}
}

// CheckRateLimit reports the user's quota for today.
func (s *SearchService) CheckRateLimit(ctx context.Context, userID string) (domain.RateLimitStatus, error) {
	return s.limiter.Check(ctx, userID)
}

// SmartSearch answers a free-text query from the cache where possible and
// from the generation service otherwise.
//
// Quota exhaustion is returned as a result with source rate_limited, not
// as an error. Generation failures degrade to the database results; only
// a missing API key and store failures are returned as errors.
func (s *SearchService) SmartSearch(ctx context.Context, req domain.SearchRequest) (*domain.SmartSearchResult, error) {
	logger.Section("Smart Search")

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if !req.Language.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, req.Language)
	}

	userID := req.Session.UserID
	premium := req.Session.Premium(s.now())
	logger.Debug("Query: %q, language=%s, user=%q, premium=%t", query, req.Language, userID, premium)

	var status domain.RateLimitStatus
	if userID != "" {
		var err error
		status, err = s.limiter.Check(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("check rate limit: %w", err)
		}
		if !status.CanSearch {
			logger.Info("Search rejected for %s: %d/%d searches used", userID, status.SearchCount, status.MaxSearches)
			return &domain.SmartSearchResult{
				Quotes:    []domain.Quote{},
				Source:    domain.SourceRateLimited,
				RateLimit: status,
				Error:     domain.ErrSearchRateLimitExceeded.Error(),
			}, nil
		}
		if err := s.limiter.IncrementSearch(ctx, userID); err != nil {
			return nil, err
		}
	}

	lookup, err := s.lookup.Lookup(ctx, domain.LookupRequest{
		Query:     query,
		Language:  req.Language,
		UserID:    userID,
		IsPremium: premium,
	})
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	result := &domain.SmartSearchResult{
		Quotes: quotesOf(lookup.Quotes),
		Source: lookup.Source,
	}

	var categoryID string
	if lookup.Category != nil {
		categoryID = lookup.Category.ID
		result.Category = categoryID
	}

	var searchCtx *domain.SearchContext
	if lookup.NormalizedQuery != "" {
		searchCtx, err = s.contexts.SaveSearchContext(ctx, query, req.Language, categoryID)
		if err != nil {
			return nil, err
		}
		result.ContextID = searchCtx.ID
	}

	if lookup.NeedsAI {
		if err := s.augment(ctx, result, lookup, req, status, query, categoryID); err != nil {
			return nil, err
		}
	}

	if userID != "" {
		if result.ContextID != "" {
			if err := s.history.RecordUserSearch(ctx, userID, result.ContextID); err != nil {
				return nil, err
			}
		}
		status, err = s.limiter.Check(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("check rate limit: %w", err)
		}
		result.RateLimit = status
	}

	logger.Info("Smart search %q: source=%s, %d quotes, ai=%t", query, result.Source, len(result.Quotes), result.WasAIGenerated)
	return result, nil
}

// augment tries to replace an insufficient result with generated quotes.
// It returns an error only for configuration failures.
func (s *SearchService) augment(
	ctx context.Context,
	result *domain.SmartSearchResult,
	lookup *domain.LookupResult,
	req domain.SearchRequest,
	status domain.RateLimitStatus,
	query, categoryID string,
) error {
	userID := req.Session.UserID
	if userID == "" {
		logger.Debug("Anonymous search, skipping AI generation")
		return nil
	}
	if !status.CanUseAI {
		logger.Info("AI quota exhausted for %s, returning database results", userID)
		result.Error = domain.ErrAIRateLimitExceeded.Error()
		return nil
	}
	if s.generator == nil || s.generator.llm == nil {
		return domain.ErrMissingAPIKey
	}

	if err := s.limiter.IncrementAISearch(ctx, userID); err != nil {
		return err
	}

	quotes, err := s.generator.GenerateForSearch(ctx, GenerationRequest{
		Query:           query,
		NormalizedQuery: lookup.NormalizedQuery,
		Language:        req.Language,
		ContextID:       result.ContextID,
		CategoryID:      categoryID,
		Count:           s.settings.AIQuoteCount,
		Avoid:           s.avoidTexts(ctx, lookup.Excluded),
	})

	switch {
	case err == nil:
		if s.settings.MaxResults > 0 && len(quotes) > s.settings.MaxResults {
			quotes = quotes[:s.settings.MaxResults]
		}
		result.Quotes = quotes
		result.Source = domain.SourceAI
		result.WasAIGenerated = true
	case errors.Is(err, domain.ErrMissingAPIKey):
		return err
	case errors.Is(err, domain.ErrAIRateLimitExceeded):
		logger.Warn("Generation service rate limited, returning database results")
		result.Error = domain.ErrAIRateLimitExceeded.Error()
	default:
		logger.Warn("AI generation failed, returning database results: %v", err)
	}
	return nil
}

// avoidTexts returns the texts of some excluded quotes for the prompt.
func (s *SearchService) avoidTexts(ctx context.Context, excluded map[string]struct{}) []string {
	if len(excluded) == 0 || s.settings.AvoidListSize <= 0 {
		return nil
	}
	ids := make([]string, 0, s.settings.AvoidListSize)
	for id := range excluded {
		if len(ids) == s.settings.AvoidListSize {
			break
		}
		ids = append(ids, id)
	}

	quotes, err := s.quotes.GetMany(ctx, ids)
	if err != nil {
		logger.Warn("Loading avoid list failed: %v", err)
		return nil
	}
	texts := make([]string, 0, len(quotes))
	for i := range quotes {
		texts = append(texts, quotes[i].Text)
	}
	return texts
}

func quotesOf(scored []domain.ScoredQuote) []domain.Quote {
	quotes := make([]domain.Quote, len(scored))
	for i := range scored {
		quotes[i] = scored[i].Quote
	}
	return quotes
}
