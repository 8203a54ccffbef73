package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

type mockSearchService struct {
	result  *domain.SmartSearchResult
	status  domain.RateLimitStatus
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchService) SmartSearch(_ context.Context, req domain.SearchRequest) (*domain.SmartSearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockSearchService) CheckRateLimit(context.Context, string) (domain.RateLimitStatus, error) {
	return m.status, m.err
}

type mockTaxonomyService struct {
	categories []domain.SearchCategory
}

func (m *mockTaxonomyService) ListCategories(context.Context) ([]domain.SearchCategory, error) {
	return m.categories, nil
}

func (m *mockTaxonomyService) FindSynonyms(_ context.Context, terms []string, _ domain.Language) ([]string, error) {
	return append(terms, "synonym"), nil
}

type mockQuoteService struct {
	daily       *domain.Quote
	favorites   []string
	resetCalled bool
	backfilled  domain.Language
	lastUser    string
}

func (m *mockQuoteService) DailyQuote(_ context.Context, s domain.Session, _ domain.Language) (*domain.Quote, error) {
	m.lastUser = s.UserID
	return m.daily, nil
}

func (m *mockQuoteService) AddFavorite(_ context.Context, userID, quoteID string) error {
	m.lastUser = userID
	m.favorites = append(m.favorites, quoteID)
	return nil
}

func (m *mockQuoteService) RemoveFavorite(_ context.Context, userID, quoteID string) error {
	m.lastUser = userID
	kept := m.favorites[:0]
	for _, id := range m.favorites {
		if id != quoteID {
			kept = append(kept, id)
		}
	}
	m.favorites = kept
	return nil
}

func (m *mockQuoteService) ListFavorites(_ context.Context, userID string) ([]domain.Quote, error) {
	m.lastUser = userID
	out := make([]domain.Quote, 0, len(m.favorites))
	for _, id := range m.favorites {
		out = append(out, domain.Quote{ID: id, Text: "Quote " + id, Language: domain.LanguageEnglish})
	}
	return out, nil
}

func (m *mockQuoteService) BackfillTranslations(_ context.Context, lang domain.Language, limit int) (int, error) {
	m.backfilled = lang
	return limit, nil
}

func (m *mockQuoteService) Reset(context.Context) error {
	m.resetCalled = true
	return nil
}

type mockSettingsService struct {
	ai     domain.AISettings
	stored string
}

func (m *mockSettingsService) Search() domain.SearchSettings { return domain.DefaultSearchSettings() }
func (m *mockSettingsService) AI() domain.AISettings         { return m.ai }

func (m *mockSettingsService) SetAPIKey(key string) error {
	m.stored = key
	return nil
}

type mockSeeder struct {
	data domain.SeedData
}

func (m *mockSeeder) Seed(_ context.Context, data domain.SeedData) (domain.SeedReport, error) {
	m.data = data
	return domain.SeedReport{Categories: len(data.Categories), Quotes: len(data.Quotes)}, nil
}

type mockSessions struct{}

func (mockSessions) Resolve(_ context.Context, token string) (domain.Session, error) {
	switch token {
	case "alice-token":
		return domain.Session{UserID: "alice"}, nil
	case "bob-token":
		return domain.Session{UserID: "bob", IsPremium: true}, nil
	}
	return domain.Session{}, domain.ErrUnauthenticated
}

type testServices struct {
	search   *mockSearchService
	taxonomy *mockTaxonomyService
	quotes   *mockQuoteService
	settings *mockSettingsService
	seeder   *mockSeeder
}

// setupTestServices installs mocks for the duration of the test.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	t.Setenv(TokenEnv, "")

	ts := &testServices{
		search: &mockSearchService{result: &domain.SmartSearchResult{
			Source: domain.SourceCached,
			Quotes: []domain.Quote{{
				ID:        "q1",
				Text:      "We suffer more in imagination than in reality.",
				Author:    "Seneca",
				Reference: "Letters, 13",
				Language:  domain.LanguageEnglish,
				Translations: map[domain.Language]domain.Translation{
					domain.LanguageGerman: {Text: "Wir leiden oefter in der Vorstellung."},
				},
			}},
			RateLimit: domain.RateLimitStatus{Remaining: 9},
		}},
		taxonomy: &mockTaxonomyService{categories: []domain.SearchCategory{{
			ID:           "work",
			Name:         "work",
			DisplayNames: map[domain.Language]string{domain.LanguageGerman: "Arbeit"},
			Keywords:     map[domain.Language][]string{domain.LanguageEnglish: {"job", "boss"}},
		}}},
		quotes:   &mockQuoteService{},
		settings: &mockSettingsService{ai: domain.AISettings{BaseURL: "https://example.test/v1", Model: "m"}},
		seeder:   &mockSeeder{},
	}
	SetServices(Services{
		Search:   ts.search,
		Taxonomy: ts.taxonomy,
		Quotes:   ts.quotes,
		Settings: ts.settings,
		Seeder:   ts.seeder,
		Sessions: mockSessions{},
		LoadSeed: func(path string) (domain.SeedData, error) {
			if path == "" {
				return domain.SeedData{Quotes: make([]domain.Quote, 2)}, nil
			}
			return domain.SeedData{Categories: make([]domain.SearchCategory, 1)}, nil
		},
	})
	t.Cleanup(func() { SetServices(Services{}) })
	return ts
}

// execute runs the root command with args and returns its output.
// Flag values are reset first since cobra keeps them between runs.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
