package mcp

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result   *domain.SmartSearchResult
	status   domain.RateLimitStatus
	err      error
	lastReq  domain.SearchRequest
	lastUser string
}

func (m *mockSearchService) SmartSearch(_ context.Context, req domain.SearchRequest) (*domain.SmartSearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SmartSearchResult{Source: domain.SourceInsufficient}, nil
	}
	return m.result, nil
}

func (m *mockSearchService) CheckRateLimit(_ context.Context, userID string) (domain.RateLimitStatus, error) {
	m.lastUser = userID
	return m.status, m.err
}

// mockTaxonomyService is a mock implementation of driving.TaxonomyService.
type mockTaxonomyService struct {
	categories []domain.SearchCategory
	synonyms   []string
	err        error
	lastTerms  []string
	lastLang   domain.Language
}

func (m *mockTaxonomyService) ListCategories(_ context.Context) ([]domain.SearchCategory, error) {
	return m.categories, m.err
}

func (m *mockTaxonomyService) FindSynonyms(_ context.Context, terms []string, lang domain.Language) ([]string, error) {
	m.lastTerms = terms
	m.lastLang = lang
	return m.synonyms, m.err
}

func testCategories() []domain.SearchCategory {
	return []domain.SearchCategory{
		{
			ID:           "work",
			Name:         "work",
			DisplayNames: map[domain.Language]string{domain.LanguageEnglish: "Work", domain.LanguageGerman: "Arbeit"},
			Keywords: map[domain.Language][]string{
				domain.LanguageEnglish: {"job", "boss"},
				domain.LanguageGerman:  {"arbeit", "chef"},
			},
		},
		{
			ID:   "grief",
			Name: "grief",
			Keywords: map[domain.Language][]string{
				domain.LanguageEnglish: {"loss"},
			},
		},
	}
}
