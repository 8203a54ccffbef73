package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/logger"
)

// CacheLookup is the tiered relevance lookup ("smart search").
//
// Tiers are tried in order of specificity: exact and synonym context
// matches, category contexts, then a full-text scan. A tier is accepted
// only when it yields at least MinCachedResults quotes that the user has
// neither favourited nor seen inside the reuse window. Lookups are read
// only; they never write to any store.
type CacheLookup struct {
	quotes   driven.QuoteStore
	contexts driven.ContextStore
	taxonomy driven.TaxonomyStore
	history  *HistoryTracker
	shuffler *Shuffler
	settings domain.SearchSettings
}

// NewCacheLookup creates a cache lookup.
func NewCacheLookup(
	quotes driven.QuoteStore,
	contexts driven.ContextStore,
	taxonomy driven.TaxonomyStore,
	history *HistoryTracker,
	shuffler *Shuffler,
	settings domain.SearchSettings,
) *CacheLookup {
	if shuffler == nil {
		shuffler = NewShuffler(nil, settings.HighBand, settings.MediumBand)
	}
	return &CacheLookup{
		quotes:   quotes,
		contexts: contexts,
		taxonomy: taxonomy,
		history:  history,
		shuffler: shuffler,
		settings: settings,
	}
}

// scoreBoard keeps the best score seen per quote.
type scoreBoard map[string]float64

func (b scoreBoard) offer(quoteID string, score float64) {
	if current, ok := b[quoteID]; !ok || score > current {
		b[quoteID] = score
	}
}

// Lookup runs the tiers for a query. It never returns an error for
// "no results"; only store failures propagate.
func (l *CacheLookup) Lookup(ctx context.Context, req domain.LookupRequest) (*domain.LookupResult, error) {
	logger.Section("Cache Lookup")

	normalized := Normalize(req.Query)
	keywords := ExtractKeywords(req.Query)

	groups, err := l.taxonomy.ListSynonymGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list synonym groups: %w", err)
	}
	expanded := ExpandKeywords(keywords, req.Language, groups)
	logger.Debug("Normalized %q -> %q, %d keywords, %d expanded", req.Query, normalized, len(keywords), len(expanded))

	excluded, err := l.history.Exclusions(ctx, req.UserID, req.IsPremium)
	if err != nil {
		return nil, fmt.Errorf("compute exclusions: %w", err)
	}

	result := &domain.LookupResult{
		NormalizedQuery: normalized,
		Excluded:        excluded,
	}
	partial := make(map[string]domain.ScoredQuote)

	// Tier 1: exact context plus synonym cross-matches.
	board, exactID, err := l.contextMatches(ctx, normalized, req.Language, expanded, excluded)
	if err != nil {
		return nil, err
	}
	result.ExactContextID = exactID
	found, err := l.hydrate(ctx, board)
	if err != nil {
		return nil, err
	}
	logger.Debug("Tier 1 (context): %d quotes", len(found))
	if l.accept(result, found, domain.SourceCached) {
		return result, nil
	}
	mergePartial(partial, found)

	// Tier 2: contexts sharing the best matching category.
	categories, err := l.taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	result.Category = MatchCategory(expanded, req.Language, categories)
	if result.Category != nil {
		board, err := l.categoryMatches(ctx, result.Category.ID, excluded)
		if err != nil {
			return nil, err
		}
		found, err := l.hydrate(ctx, board)
		if err != nil {
			return nil, err
		}
		logger.Debug("Tier 2 (category %s): %d quotes", result.Category.ID, len(found))
		if l.accept(result, found, domain.SourceCategory) {
			return result, nil
		}
		mergePartial(partial, found)
	}

	// Tier 3: full-text scan.
	found, err = l.fullTextMatches(ctx, req.Query, expanded, excluded)
	if err != nil {
		return nil, err
	}
	logger.Debug("Tier 3 (full text): %d quotes", len(found))
	if l.accept(result, found, domain.SourceDatabase) {
		return result, nil
	}
	mergePartial(partial, found)

	collected := make([]domain.ScoredQuote, 0, len(partial))
	for _, q := range partial {
		collected = append(collected, q)
	}
	result.Source = domain.SourceInsufficient
	result.NeedsAI = true
	result.Quotes = l.limit(l.shuffler.Shuffle(collected))
	logger.Info("Cache lookup insufficient: %d partial quotes, AI needed", len(result.Quotes))
	return result, nil
}

// accept fills result when found reaches the threshold.
func (l *CacheLookup) accept(result *domain.LookupResult, found []domain.ScoredQuote, source domain.SearchSource) bool {
	if len(found) < l.settings.MinCachedResults {
		return false
	}
	result.Source = source
	result.Quotes = l.limit(l.shuffler.Shuffle(found))
	logger.Info("Cache lookup hit: source=%s, %d candidates", source, len(found))
	return true
}

func (l *CacheLookup) limit(quotes []domain.ScoredQuote) []domain.ScoredQuote {
	if l.settings.MaxResults > 0 && len(quotes) > l.settings.MaxResults {
		return quotes[:l.settings.MaxResults]
	}
	return quotes
}

// contextMatches scores quotes mapped to the exact context (raw score) and
// to recent contexts whose keywords overlap the expanded set (discounted).
func (l *CacheLookup) contextMatches(
	ctx context.Context,
	normalized string,
	lang domain.Language,
	expanded KeywordSet,
	excluded map[string]struct{},
) (scoreBoard, string, error) {
	multipliers := make(map[string]float64)

	var exactID string
	if normalized != "" {
		exact, err := l.contexts.FindContext(ctx, normalized, lang)
		switch {
		case err == nil:
			exactID = exact.ID
			multipliers[exact.ID] = 1
		case errors.Is(err, domain.ErrNotFound):
		default:
			return nil, "", fmt.Errorf("find context: %w", err)
		}
	}

	if len(expanded) > 0 {
		recent, err := l.contexts.RecentContexts(ctx, lang, l.settings.RecentContextScan)
		if err != nil {
			return nil, "", fmt.Errorf("list recent contexts: %w", err)
		}
		for _, c := range recent {
			if c.ID == exactID {
				continue
			}
			if expanded.Overlaps(ExtractKeywords(c.NormalizedQuery)) {
				multipliers[c.ID] = l.settings.CrossMatchMultiplier
			}
		}
	}

	board, err := l.scoreMappings(ctx, multipliers, excluded)
	if err != nil {
		return nil, "", err
	}
	return board, exactID, nil
}

// categoryMatches scores quotes mapped to contexts in a category.
func (l *CacheLookup) categoryMatches(ctx context.Context, categoryID string, excluded map[string]struct{}) (scoreBoard, error) {
	contexts, err := l.contexts.ContextsByCategory(ctx, categoryID, l.settings.CategoryContextScan)
	if err != nil {
		return nil, fmt.Errorf("list category contexts: %w", err)
	}
	multipliers := make(map[string]float64, len(contexts))
	for _, c := range contexts {
		multipliers[c.ID] = 1
	}
	return l.scoreMappings(ctx, multipliers, excluded)
}

func (l *CacheLookup) scoreMappings(
	ctx context.Context,
	multipliers map[string]float64,
	excluded map[string]struct{},
) (scoreBoard, error) {
	board := make(scoreBoard)
	if len(multipliers) == 0 {
		return board, nil
	}

	ids := make([]string, 0, len(multipliers))
	for id := range multipliers {
		ids = append(ids, id)
	}
	mappings, err := l.contexts.MappingsForContexts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}

	for _, m := range mappings {
		if _, skip := excluded[m.QuoteID]; skip {
			continue
		}
		board.offer(m.QuoteID, float64(m.RelevanceScore)*multipliers[m.ContextID])
	}
	return board, nil
}

// hydrate loads the quotes on a board. Quotes that no longer exist are dropped.
func (l *CacheLookup) hydrate(ctx context.Context, board scoreBoard) ([]domain.ScoredQuote, error) {
	if len(board) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(board))
	for id := range board {
		ids = append(ids, id)
	}

	quotes, err := l.quotes.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load quotes: %w", err)
	}

	scored := make([]domain.ScoredQuote, 0, len(quotes))
	for i := range quotes {
		scored = append(scored, domain.ScoredQuote{Quote: quotes[i], Score: board[quotes[i].ID]})
	}
	return scored, nil
}

// fullTextMatches scans recent quotes for the raw query substring in any
// field of any language bundle, or any expanded keyword in the primary
// text, tags or situations.
func (l *CacheLookup) fullTextMatches(
	ctx context.Context,
	query string,
	expanded KeywordSet,
	excluded map[string]struct{},
) ([]domain.ScoredQuote, error) {
	quotes, err := l.quotes.List(ctx, l.settings.FullTextScan)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var found []domain.ScoredQuote
	for i := range quotes {
		q := &quotes[i]
		if _, skip := excluded[q.ID]; skip {
			continue
		}
		if containsQuery(q, needle) || containsKeyword(q, expanded) {
			found = append(found, domain.ScoredQuote{Quote: *q, Score: l.settings.FullTextScore})
		}
	}
	return found, nil
}

func containsQuery(q *domain.Quote, needle string) bool {
	if needle == "" {
		return false
	}
	fields := []string{q.Text, q.Context, q.Explanation, q.Author}
	fields = append(fields, q.Tags...)
	fields = append(fields, q.Situations...)
	for _, t := range q.Translations {
		fields = append(fields, t.Text, t.Context, t.Explanation)
		fields = append(fields, t.Tags...)
		fields = append(fields, t.Situations...)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func containsKeyword(q *domain.Quote, expanded KeywordSet) bool {
	if len(expanded) == 0 {
		return false
	}
	fields := append([]string{q.Text}, q.Tags...)
	fields = append(fields, q.Situations...)
	for _, f := range fields {
		lower := strings.ToLower(f)
		for k := range expanded {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}

func mergePartial(partial map[string]domain.ScoredQuote, found []domain.ScoredQuote) {
	for _, q := range found {
		if current, ok := partial[q.Quote.ID]; !ok || q.Score > current.Score {
			partial[q.Quote.ID] = q
		}
	}
}
