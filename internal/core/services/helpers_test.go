package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService for testing. Responses are returned
// in order; the last one repeats.
type mockLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	messages  [][]driven.ChatMessage
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	return m.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{})
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = append(m.messages, messages)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	reloads int
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() { m.reloads++ }

// --- Fixture ---

// fixture wires every search service against in-memory stores with a
// controllable clock and deterministic shuffling.
type fixture struct {
	t        *testing.T
	store    *memory.Store
	now      time.Time
	llm      *mockLLM
	settings domain.SearchSettings

	history   *HistoryTracker
	limiter   *RateLimiter
	lookup    *CacheLookup
	contexts  *ContextService
	generator *Generator
	search    *SearchService
	quotes    *QuoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		store:    memory.NewStore(),
		now:      time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		llm:      &mockLLM{},
		settings: domain.DefaultSearchSettings(),
	}
	f.build()
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) build() {
	rng := rand.New(rand.NewPCG(1, 2))
	noRetry := RetryPolicy{Attempts: 1}

	f.history = NewHistoryTracker(f.store.History, f.store.Favorites, f.settings, f.clock)
	f.limiter = NewRateLimiter(f.store.Limits, f.settings, f.clock)
	f.lookup = NewCacheLookup(f.store.Quotes, f.store.Contexts, f.store.Taxonomy, f.history,
		NewShuffler(rng, f.settings.HighBand, f.settings.MediumBand), f.settings)
	f.contexts = NewContextService(f.store.Contexts, f.clock)

	var llm driven.LLMService
	if f.llm != nil {
		llm = f.llm
	}
	f.generator = NewGenerator(llm, f.store.Quotes, f.store.Contexts, f.settings, f.clock)
	f.generator.SetRetryPolicy(noRetry)

	f.search = NewSearchService(f.limiter, f.lookup, f.contexts, f.generator, f.history,
		f.store.Quotes, f.settings, f.clock)

	f.quotes = NewQuoteService(f.store.Quotes, f.store.Favorites, f.history, f.clock)
	f.quotes.SetRand(rand.New(rand.NewPCG(3, 4)))
	f.quotes.SetRetryPolicy(noRetry)
	if llm != nil {
		f.quotes.SetLLM(llm)
	}
	f.quotes.SetResetter(f.store)
}

// withoutLLM rebuilds the services with no generation service configured.
func (f *fixture) withoutLLM() *fixture {
	f.llm = nil
	f.build()
	return f
}

// withSettings rebuilds the services with modified settings.
func (f *fixture) withSettings(mutate func(*domain.SearchSettings)) *fixture {
	mutate(&f.settings)
	f.build()
	return f
}

func (f *fixture) addQuote(id, text string, lang domain.Language, tags ...string) *domain.Quote {
	f.t.Helper()
	q := &domain.Quote{
		ID:        id,
		Text:      text,
		Source:    domain.QuoteSourceStatic,
		Language:  lang,
		Tags:      tags,
		CreatedAt: f.now,
	}
	require.NoError(f.t, f.store.Quotes.Save(context.Background(), q))
	return q
}

// addContext records a context for query and maps each quote to it.
func (f *fixture) addContext(query string, lang domain.Language, categoryID string, score int, quoteIDs ...string) *domain.SearchContext {
	f.t.Helper()
	ctx := context.Background()
	c, err := f.contexts.SaveSearchContext(ctx, query, lang, categoryID)
	require.NoError(f.t, err)
	for _, id := range quoteIDs {
		_, err := f.contexts.AddQuoteContextMapping(ctx, id, c.ID, score, false)
		require.NoError(f.t, err)
	}
	return c
}

func (f *fixture) addCategory(id string, en, de []string) {
	f.t.Helper()
	require.NoError(f.t, f.store.Taxonomy.SaveCategory(context.Background(), domain.SearchCategory{
		ID:       id,
		Name:     id,
		Keywords: map[domain.Language][]string{domain.LanguageEnglish: en, domain.LanguageGerman: de},
	}))
}

func (f *fixture) addSynonyms(id string, en, de []string) {
	f.t.Helper()
	require.NoError(f.t, f.store.Taxonomy.SaveSynonymGroup(context.Background(), domain.SynonymGroup{
		ID:    id,
		Name:  id,
		Terms: map[domain.Language][]string{domain.LanguageEnglish: en, domain.LanguageGerman: de},
	}))
}

func (f *fixture) showQuote(userID, quoteID string, daysAgo int) {
	f.t.Helper()
	require.NoError(f.t, f.store.History.RecordShown(context.Background(), domain.UserQuoteHistory{
		ID:        fmt.Sprintf("h-%s-%s-%d", userID, quoteID, daysAgo),
		UserID:    userID,
		QuoteID:   quoteID,
		ShownDate: domain.DateKey(f.now.AddDate(0, 0, -daysAgo)),
		Kind:      domain.HistoryDaily,
		ShownAt:   f.now.AddDate(0, 0, -daysAgo),
	}))
}

func quoteIDs(quotes []domain.Quote) []string {
	ids := make([]string, len(quotes))
	for i, q := range quotes {
		ids[i] = q.ID
	}
	return ids
}

func scoredIDs(quotes []domain.ScoredQuote) []string {
	ids := make([]string, len(quotes))
	for i, q := range quotes {
		ids[i] = q.Quote.ID
	}
	return ids
}

// candidateJSON builds one bilingual candidate as the model would return it.
func candidateJSON(en, de string, score int, relatedEN, relatedDE []string) map[string]any {
	return map[string]any{
		"author":         "",
		"relevanceScore": score,
		"en": map[string]any{
			"text":            en,
			"reference":       "",
			"tags":            []string{"comfort"},
			"relevantQueries": relatedEN,
		},
		"de": map[string]any{
			"text":            de,
			"reference":       "",
			"tags":            []string{"trost"},
			"relevantQueries": relatedDE,
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
