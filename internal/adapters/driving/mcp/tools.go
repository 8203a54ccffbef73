package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// SmartSearchInput is the input schema for the smart_search tool.
type SmartSearchInput struct {
	Query    string `json:"query" jsonschema:"free-text description of the situation to find quotes for"`
	Language string `json:"language,omitempty" jsonschema:"language code, en or de (default en)"`
}

// SmartSearchOutput is the output schema for the smart_search tool.
type SmartSearchOutput struct {
	Source         string        `json:"source"`
	Quotes         []QuoteOutput `json:"quotes"`
	Count          int           `json:"count"`
	WasAIGenerated bool          `json:"was_ai_generated"`
	Category       string        `json:"category,omitempty"`
	Remaining      int           `json:"remaining_searches"`
	Error          string        `json:"error,omitempty"`
}

// QuoteOutput is a quote rendered in the requested language.
type QuoteOutput struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// RateLimitInput is the input schema for the check_rate_limit tool.
type RateLimitInput struct{}

// CategoriesInput is the input schema for the list_categories tool.
type CategoriesInput struct {
	Language string `json:"language,omitempty" jsonschema:"language for display names, en or de (default en)"`
}

// CategoriesOutput is the output schema for the list_categories tool.
type CategoriesOutput struct {
	Categories []CategoryOutput `json:"categories"`
}

// CategoryOutput is one category in the requested language.
type CategoryOutput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// SynonymsInput is the input schema for the find_synonyms tool.
type SynonymsInput struct {
	Terms    []string `json:"terms" jsonschema:"terms to expand"`
	Language string   `json:"language,omitempty" jsonschema:"language code, en or de (default en)"`
}

// SynonymsOutput is the output schema for the find_synonyms tool.
type SynonymsOutput struct {
	Terms []string `json:"terms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "smart_search",
		Description: "Find quotes for a situation, using cached results first and generating new ones when needed",
	}, s.handleSmartSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_rate_limit",
		Description: "Report how many searches and AI generations remain today",
	}, s.handleCheckRateLimit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List the topical categories queries are matched against",
	}, s.handleListCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_synonyms",
		Description: "Expand terms with their curated synonyms",
	}, s.handleFindSynonyms)
}

// handleSmartSearch handles the smart_search tool invocation.
func (s *Server) handleSmartSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SmartSearchInput,
) (*mcp.CallToolResult, SmartSearchOutput, error) {
	lang, err := domain.ParseLanguage(input.Language)
	if err != nil {
		return nil, SmartSearchOutput{}, err
	}

	result, err := s.ports.Search.SmartSearch(ctx, domain.SearchRequest{
		Query:    input.Query,
		Language: lang,
		Session:  s.ports.Session,
	})
	if err != nil {
		return nil, SmartSearchOutput{}, err
	}

	output := SmartSearchOutput{
		Source:         string(result.Source),
		Quotes:         make([]QuoteOutput, 0, len(result.Quotes)),
		WasAIGenerated: result.WasAIGenerated,
		Category:       result.Category,
		Remaining:      result.RateLimit.Remaining,
		Error:          result.Error,
	}
	for i := range result.Quotes {
		b, ok := result.Quotes[i].Bundle(lang)
		if !ok {
			continue
		}
		output.Quotes = append(output.Quotes, QuoteOutput{
			ID:        result.Quotes[i].ID,
			Text:      b.Text,
			Author:    result.Quotes[i].Author,
			Reference: b.Reference,
		})
	}
	output.Count = len(output.Quotes)

	return nil, output, nil
}

// handleCheckRateLimit handles the check_rate_limit tool invocation.
func (s *Server) handleCheckRateLimit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RateLimitInput,
) (*mcp.CallToolResult, domain.RateLimitStatus, error) {
	if s.ports.Session.Anonymous() {
		return nil, domain.RateLimitStatus{}, fmt.Errorf("check rate limit: %w", domain.ErrUnauthenticated)
	}
	status, err := s.ports.Search.CheckRateLimit(ctx, s.ports.Session.UserID)
	if err != nil {
		return nil, domain.RateLimitStatus{}, err
	}
	return nil, status, nil
}

// handleListCategories handles the list_categories tool invocation.
func (s *Server) handleListCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CategoriesInput,
) (*mcp.CallToolResult, CategoriesOutput, error) {
	lang, err := domain.ParseLanguage(input.Language)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}
	cats, err := s.ports.Taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}

	output := CategoriesOutput{Categories: make([]CategoryOutput, len(cats))}
	for i := range cats {
		output.Categories[i] = CategoryOutput{
			ID:       cats[i].ID,
			Name:     cats[i].DisplayName(lang),
			Keywords: cats[i].Keywords[lang],
		}
	}
	return nil, output, nil
}

// handleFindSynonyms handles the find_synonyms tool invocation.
func (s *Server) handleFindSynonyms(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SynonymsInput,
) (*mcp.CallToolResult, SynonymsOutput, error) {
	lang, err := domain.ParseLanguage(input.Language)
	if err != nil {
		return nil, SynonymsOutput{}, err
	}
	terms, err := s.ports.Taxonomy.FindSynonyms(ctx, input.Terms, lang)
	if err != nil {
		return nil, SynonymsOutput{}, err
	}
	return nil, SynonymsOutput{Terms: terms}, nil
}
