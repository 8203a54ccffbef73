package api

import (
	"context"
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

type mockSearch struct {
	result   *domain.SmartSearchResult
	err      error
	lastReq  domain.SearchRequest
	status   domain.RateLimitStatus
	lastUser string
}

func (m *mockSearch) SmartSearch(_ context.Context, req domain.SearchRequest) (*domain.SmartSearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockSearch) CheckRateLimit(_ context.Context, userID string) (domain.RateLimitStatus, error) {
	m.lastUser = userID
	return m.status, nil
}

type mockTaxonomy struct {
	categories []domain.SearchCategory
	lastTerms  []string
	lastLang   domain.Language
}

func (m *mockTaxonomy) ListCategories(context.Context) ([]domain.SearchCategory, error) {
	return m.categories, nil
}

func (m *mockTaxonomy) FindSynonyms(_ context.Context, terms []string, lang domain.Language) ([]string, error) {
	m.lastTerms = terms
	m.lastLang = lang
	return append([]string{"expanded"}, terms...), nil
}

type mockQuotes struct {
	daily        *domain.Quote
	dailySession domain.Session
	favorites    map[string][]string
	known        map[string]bool
}

func newMockQuotes() *mockQuotes {
	return &mockQuotes{
		favorites: make(map[string][]string),
		known:     map[string]bool{"q1": true, "q2": true},
	}
}

func (m *mockQuotes) DailyQuote(_ context.Context, s domain.Session, _ domain.Language) (*domain.Quote, error) {
	m.dailySession = s
	return m.daily, nil
}

func (m *mockQuotes) AddFavorite(_ context.Context, userID, quoteID string) error {
	if !m.known[quoteID] {
		return domain.ErrNotFound
	}
	m.favorites[userID] = append(m.favorites[userID], quoteID)
	return nil
}

func (m *mockQuotes) RemoveFavorite(_ context.Context, userID, quoteID string) error {
	kept := m.favorites[userID][:0]
	for _, id := range m.favorites[userID] {
		if id != quoteID {
			kept = append(kept, id)
		}
	}
	m.favorites[userID] = kept
	return nil
}

func (m *mockQuotes) ListFavorites(_ context.Context, userID string) ([]domain.Quote, error) {
	out := []domain.Quote{}
	for _, id := range m.favorites[userID] {
		out = append(out, domain.Quote{ID: id, Text: strings.ToUpper(id)})
	}
	return out, nil
}

func (m *mockQuotes) BackfillTranslations(context.Context, domain.Language, int) (int, error) {
	return 0, nil
}

func (m *mockQuotes) Reset(context.Context) error { return nil }
