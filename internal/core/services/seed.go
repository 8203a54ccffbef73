package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
	"github.com/custodia-labs/lumen/internal/logger"
)

// Ensure SeedService implements the interface.
var _ driving.Seeder = (*SeedService)(nil)

// Seed mapping scores: base plus a bonus per category keyword hit, capped.
const (
	seedBaseScore = 60
	seedHitBonus  = 10
	seedMaxScore  = 95
)

// SeedService writes static taxonomy and quotes, and maps every quote to a
// context named after its best matching category so the category tier has
// something to serve before any user has searched.
type SeedService struct {
	quotes   driven.QuoteStore
	contexts driven.ContextStore
	taxonomy driven.TaxonomyStore
	now      Clock
}

// NewSeedService creates a seed service.
func NewSeedService(
	quotes driven.QuoteStore,
	contexts driven.ContextStore,
	taxonomy driven.TaxonomyStore,
	now Clock,
) *SeedService {
	return &SeedService{
		quotes:   quotes,
		contexts: contexts,
		taxonomy: taxonomy,
		now:      clockOrDefault(now),
	}
}

// Seed upserts data. Quotes keep their seed IDs, so re-seeding replaces
// rather than duplicates them.
func (s *SeedService) Seed(ctx context.Context, data domain.SeedData) (domain.SeedReport, error) {
	logger.Section("Seed")
	var report domain.SeedReport

	for _, c := range data.Categories {
		if err := s.taxonomy.SaveCategory(ctx, c); err != nil {
			return report, fmt.Errorf("save category %s: %w", c.ID, err)
		}
		report.Categories++
	}
	for _, g := range data.SynonymGroups {
		if err := s.taxonomy.SaveSynonymGroup(ctx, g); err != nil {
			return report, fmt.Errorf("save synonym group %s: %w", g.ID, err)
		}
		report.SynonymGroups++
	}

	now := s.now()
	for i := range data.Quotes {
		q := data.Quotes[i]
		if q.ID == "" || strings.TrimSpace(q.Text) == "" || !q.Language.Valid() {
			return report, fmt.Errorf("%w: seed quote %d needs id, text and language", domain.ErrInvalidInput, i)
		}
		if q.Source == "" {
			q.Source = domain.QuoteSourceStatic
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		if err := s.quotes.Save(ctx, &q); err != nil {
			return report, fmt.Errorf("save quote %s: %w", q.ID, err)
		}
		report.Quotes++

		mapped, err := s.mapToCategory(ctx, &q, data.Categories)
		if err != nil {
			return report, err
		}
		report.Mappings += mapped
	}

	logger.Info("Seeded %d categories, %d synonym groups, %d quotes, %d mappings",
		report.Categories, report.SynonymGroups, report.Quotes, report.Mappings)
	return report, nil
}

// mapToCategory links q to the category context in every language it has
// text in. Returns the number of mappings written.
func (s *SeedService) mapToCategory(ctx context.Context, q *domain.Quote, categories []domain.SearchCategory) (int, error) {
	mapped := 0
	for _, lang := range domain.SupportedLanguages {
		bundle, ok := q.Bundle(lang)
		if !ok || bundle.Text == "" {
			continue
		}

		keywords := NewKeywordSet(ExtractKeywords(bundle.Text))
		for _, tag := range bundle.Tags {
			keywords.Add(tag)
		}
		for _, sit := range bundle.Situations {
			for _, k := range ExtractKeywords(sit) {
				keywords.Add(k)
			}
		}

		best := MatchCategory(keywords, lang, categories)
		if best == nil {
			continue
		}
		hits := categoryScore(keywords, best.Keywords[lang])
		score := seedBaseScore + seedHitBonus*hits
		if score > seedMaxScore {
			score = seedMaxScore
		}

		name := best.DisplayName(lang)
		normalized := Normalize(name)
		if normalized == "" {
			continue
		}
		c, err := s.contexts.EnsureContext(ctx, domain.SearchContext{
			ID:              uuid.New().String(),
			Query:           name,
			NormalizedQuery: normalized,
			CategoryID:      best.ID,
			Language:        lang,
			CreatedAt:       s.now(),
			LastUsedAt:      s.now(),
		})
		if err != nil {
			return mapped, fmt.Errorf("ensure category context %s: %w", best.ID, err)
		}
		if _, err := s.contexts.UpsertMapping(ctx, domain.QuoteContextMapping{
			ID:             uuid.New().String(),
			QuoteID:        q.ID,
			ContextID:      c.ID,
			RelevanceScore: score,
			CreatedAt:      s.now(),
		}); err != nil {
			return mapped, fmt.Errorf("map quote %s: %w", q.ID, err)
		}
		mapped++
	}
	return mapped, nil
}
