package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/logger"
)

// GenerationRequest describes a search that the cache could not answer.
type GenerationRequest struct {
	Query           string
	NormalizedQuery string
	Language        domain.Language
	ContextID       string
	CategoryID      string

	// Count is the number of quotes to ask for. Zero uses AIQuoteCount.
	Count int

	// Avoid lists quote texts the model must not repeat.
	Avoid []string
}

// Generator asks the generation service for new quotes and persists them,
// together with mappings to the originating context and to contexts for
// the related queries the model suggests.
type Generator struct {
	llm      driven.LLMService
	prompts  promptLoader
	quotes   driven.QuoteStore
	contexts driven.ContextStore
	settings domain.SearchSettings
	retry    RetryPolicy
	now      Clock
}

// NewGenerator creates a generator. llm may be nil when no API key is
// configured; generation then fails with domain.ErrMissingAPIKey.
func NewGenerator(
	llm driven.LLMService,
	quotes driven.QuoteStore,
	contexts driven.ContextStore,
	settings domain.SearchSettings,
	now Clock,
) *Generator {
	return &Generator{
		llm:      llm,
		quotes:   quotes,
		contexts: contexts,
		settings: settings,
		retry:    DefaultRetryPolicy(),
		now:      clockOrDefault(now),
	}
}

// SetPromptStore sets the store for customisable prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = promptLoader{store: store}
}

// SetRetryPolicy overrides the retry policy for persisting results.
func (g *Generator) SetRetryPolicy(p RetryPolicy) {
	g.retry = p
}

// GenerateForSearch runs one generation for a search and returns the quotes
// that were persisted.
func (g *Generator) GenerateForSearch(ctx context.Context, req GenerationRequest) ([]domain.Quote, error) {
	logger.Section("AI Generation")
	if g.llm == nil {
		return nil, domain.ErrMissingAPIKey
	}

	count := req.Count
	if count <= 0 {
		count = g.settings.AIQuoteCount
	}
	userPrompt := fmt.Sprintf(g.prompts.load(driven.PromptSearchUser),
		count, req.Query, req.Language.Name(), formatAvoidList(req.Avoid))

	raw, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: g.prompts.load(driven.PromptSearchSystem)},
		{Role: "user", Content: userPrompt},
	}, driven.ChatOptions{MaxTokens: 4000, Temperature: 0.8})
	if err != nil {
		return nil, fmt.Errorf("generate quotes: %w", err)
	}
	logger.Debug("Generation response: %d bytes from %s", len(raw), g.llm.ModelName())

	var candidates []Candidate
	switch parsed := ParseCandidates(raw).(type) {
	case ParseSuccess:
		logger.Debug("Parsed %d candidates (%s)", len(parsed.Candidates), parsed.Strategy)
		candidates = parsed.Candidates
	case ParseFailure:
		return nil, fmt.Errorf("%w: %s", domain.ErrGenerationFailed, parsed.Reason)
	}

	valid := FilterBilingual(candidates)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %d candidates, none bilingually complete", domain.ErrGenerationFailed, len(candidates))
	}
	if dropped := len(candidates) - len(valid); dropped > 0 {
		logger.Warn("Dropped %d candidates missing English or German text", dropped)
	}

	quotes := make([]domain.Quote, 0, len(valid))
	var lastErr error
	for i := range valid {
		quote, err := g.persistCandidate(ctx, &valid[i], req, userPrompt)
		if err != nil {
			logger.Warn("Persisting generated quote failed: %v", err)
			lastErr = err
			continue
		}
		quotes = append(quotes, *quote)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("persist generated quotes: %w", lastErr)
	}

	logger.Info("Generated and stored %d quotes for %q", len(quotes), req.NormalizedQuery)
	return quotes, nil
}

func (g *Generator) persistCandidate(
	ctx context.Context,
	c *Candidate,
	req GenerationRequest,
	prompt string,
) (*domain.Quote, error) {
	quote := g.buildQuote(c, req.Language, prompt)
	if err := g.retry.Do(ctx, "save quote", func() error {
		return g.quotes.Save(ctx, &quote)
	}); err != nil {
		return nil, err
	}

	score := g.settings.DefaultAIRelevance
	if c.RelevanceScore != nil {
		score = *c.RelevanceScore
	}
	score = domain.ClampScore(score)

	// The quote is stored and served either way; an unmapped quote only
	// misses the exact-context tier until a related query maps it.
	if req.ContextID != "" {
		if err := g.mapQuote(ctx, quote.ID, req.ContextID, score); err != nil {
			logger.Warn("Mapping quote %s to context %s failed: %v", quote.ID, req.ContextID, err)
		}
	}

	g.mapRelatedQueries(ctx, c, &quote, req, score)
	return &quote, nil
}

func (g *Generator) buildQuote(c *Candidate, lang domain.Language, prompt string) domain.Quote {
	primary := c.Bundle(lang).Translation()
	secondary := c.Bundle(lang.Other()).Translation()

	return domain.Quote{
		ID:           uuid.New().String(),
		Text:         primary.Text,
		Author:       strings.TrimSpace(c.Author),
		Reference:    primary.Reference,
		Source:       domain.QuoteSourceAI,
		Language:     lang,
		Context:      primary.Context,
		Explanation:  primary.Explanation,
		Situations:   primary.Situations,
		Tags:         primary.Tags,
		Translations: map[domain.Language]domain.Translation{lang.Other(): secondary},
		AIPrompt:     prompt,
		CreatedAt:    g.now(),
	}
}

// mapRelatedQueries links the quote to a context for every related query
// in either language so later searches for those phrases hit the cache.
// Failures are logged; the quote itself is already usable.
func (g *Generator) mapRelatedQueries(
	ctx context.Context,
	c *Candidate,
	quote *domain.Quote,
	req GenerationRequest,
	score int,
) {
	for _, lang := range []domain.Language{req.Language, req.Language.Other()} {
		bundle := c.Bundle(lang)
		if bundle == nil {
			continue
		}

		penalty := g.settings.RelatedCrossLanguagePenalty
		if lang == req.Language {
			penalty = g.settings.RelatedSameLanguagePenalty
		}
		related := score - penalty
		if related < g.settings.RelatedScoreFloor {
			related = g.settings.RelatedScoreFloor
		}

		for _, q := range bundle.RelevantQueries {
			normalized := Normalize(q)
			if normalized == "" || (lang == req.Language && normalized == req.NormalizedQuery) {
				continue
			}
			if err := g.mapRelatedQuery(ctx, quote.ID, q, normalized, lang, req.CategoryID, related); err != nil {
				logger.Warn("Mapping related query %q failed: %v", q, err)
			}
		}
	}
}

func (g *Generator) mapRelatedQuery(
	ctx context.Context,
	quoteID, query, normalized string,
	lang domain.Language,
	categoryID string,
	score int,
) error {
	now := g.now()
	var stored *domain.SearchContext
	err := g.retry.Do(ctx, "ensure related context", func() error {
		var err error
		stored, err = g.contexts.EnsureContext(ctx, domain.SearchContext{
			ID:              uuid.New().String(),
			Query:           strings.TrimSpace(query),
			NormalizedQuery: normalized,
			CategoryID:      categoryID,
			Language:        lang,
			CreatedAt:       now,
			LastUsedAt:      now,
		})
		return err
	})
	if err != nil {
		return err
	}
	return g.mapQuote(ctx, quoteID, stored.ID, score)
}

func (g *Generator) mapQuote(ctx context.Context, quoteID, contextID string, score int) error {
	if quoteID == "" || contextID == "" {
		return fmt.Errorf("%w: mapping needs quote and context", domain.ErrInvalidInput)
	}
	return g.retry.Do(ctx, "upsert mapping", func() error {
		_, err := g.contexts.UpsertMapping(ctx, domain.QuoteContextMapping{
			ID:             uuid.New().String(),
			QuoteID:        quoteID,
			ContextID:      contextID,
			RelevanceScore: score,
			IsAIGenerated:  true,
			CreatedAt:      g.now(),
		})
		return err
	})
}

func formatAvoidList(texts []string) string {
	if len(texts) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, t := range texts {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
