package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// failingMappings rejects mappings onto one context.
type failingMappings struct {
	driven.ContextStore
	contextID string
}

func (s *failingMappings) UpsertMapping(ctx context.Context, m domain.QuoteContextMapping) (*domain.QuoteContextMapping, error) {
	if m.ContextID == s.contextID {
		return nil, errors.New("disk full")
	}
	return s.ContextStore.UpsertMapping(ctx, m)
}

const (
	heartEN = "The Lord is close to the brokenhearted."
	heartDE = "Der Herr ist nahe denen, die zerbrochenen Herzens sind."
)

func mappingScores(t *testing.T, f *fixture, query string, lang domain.Language) map[string]int {
	t.Helper()
	ctx := context.Background()
	c, err := f.store.Contexts.FindContext(ctx, Normalize(query), lang)
	require.NoError(t, err)
	mappings, err := f.store.Contexts.MappingsForContexts(ctx, []string{c.ID})
	require.NoError(t, err)
	scores := make(map[string]int, len(mappings))
	for _, m := range mappings {
		scores[m.QuoteID] = m.RelevanceScore
	}
	return scores
}

func TestGenerator_PersistsBilingualQuotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addContext("Liebeskummer", domain.LanguageGerman, "", 0)

	f.llm.responses = []string{mustJSON(t, []any{
		candidateJSON(heartEN, heartDE, 92, nil, nil),
	})}

	quotes, err := f.generator.GenerateForSearch(ctx, GenerationRequest{
		Query:           "Liebeskummer",
		NormalizedQuery: "liebeskummer",
		Language:        domain.LanguageGerman,
		ContextID:       c.ID,
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, domain.LanguageGerman, q.Language)
	assert.Equal(t, heartDE, q.Text)
	assert.Equal(t, domain.QuoteSourceAI, q.Source)
	assert.Equal(t, heartEN, q.Translations[domain.LanguageEnglish].Text)
	assert.NotContains(t, q.Translations, domain.LanguageGerman)
	assert.Contains(t, q.AIPrompt, "Liebeskummer")

	stored, err := f.store.Quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, heartDE, stored.Text)

	assert.Equal(t, map[string]int{q.ID: 92}, mappingScores(t, f, "Liebeskummer", domain.LanguageGerman))
}

func TestGenerator_DefaultRelevance(t *testing.T) {
	f := newFixture(t)
	c := f.addContext("broken heart", domain.LanguageEnglish, "", 0)

	candidate := candidateJSON(heartEN, heartDE, 0, nil, nil)
	delete(candidate, "relevanceScore")
	f.llm.responses = []string{mustJSON(t, []any{candidate})}

	quotes, err := f.generator.GenerateForSearch(context.Background(), GenerationRequest{
		Query:           "broken heart",
		NormalizedQuery: "broken heart",
		Language:        domain.LanguageEnglish,
		ContextID:       c.ID,
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, 80, mappingScores(t, f, "broken heart", domain.LanguageEnglish)[quotes[0].ID])
}

func TestGenerator_RelatedQueryMappings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addContext("Liebeskummer", domain.LanguageGerman, "relationship", 0)

	f.llm.responses = []string{mustJSON(t, []any{
		candidateJSON(heartEN, heartDE, 90,
			[]string{"heartbreak help", "broken heart"},
			[]string{"gebrochenes Herz", "Liebeskummer"}),
	})}

	quotes, err := f.generator.GenerateForSearch(ctx, GenerationRequest{
		Query:           "Liebeskummer",
		NormalizedQuery: "liebeskummer",
		Language:        domain.LanguageGerman,
		ContextID:       c.ID,
		CategoryID:      "relationship",
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	id := quotes[0].ID

	assert.Equal(t, 90, mappingScores(t, f, "Liebeskummer", domain.LanguageGerman)[id])
	assert.Equal(t, 80, mappingScores(t, f, "gebrochenes Herz", domain.LanguageGerman)[id])
	assert.Equal(t, 75, mappingScores(t, f, "heartbreak help", domain.LanguageEnglish)[id])
	assert.Equal(t, 75, mappingScores(t, f, "broken heart", domain.LanguageEnglish)[id])

	related, err := f.store.Contexts.FindContext(ctx, "gebrochenes herz", domain.LanguageGerman)
	require.NoError(t, err)
	assert.Zero(t, related.SearchCount)
	assert.Equal(t, "relationship", related.CategoryID)

	original, err := f.store.Contexts.FindContext(ctx, "liebeskummer", domain.LanguageGerman)
	require.NoError(t, err)
	assert.Equal(t, 1, original.SearchCount)
}

func TestGenerator_RelatedScoreFloor(t *testing.T) {
	f := newFixture(t)
	c := f.addContext("grief", domain.LanguageEnglish, "", 0)

	f.llm.responses = []string{mustJSON(t, []any{
		candidateJSON(heartEN, heartDE, 55, []string{"losing someone"}, []string{"Trauer"}),
	})}

	quotes, err := f.generator.GenerateForSearch(context.Background(), GenerationRequest{
		Query:           "grief",
		NormalizedQuery: "grief",
		Language:        domain.LanguageEnglish,
		ContextID:       c.ID,
	})
	require.NoError(t, err)
	id := quotes[0].ID

	assert.Equal(t, 50, mappingScores(t, f, "losing someone", domain.LanguageEnglish)[id])
	assert.Equal(t, 50, mappingScores(t, f, "Trauer", domain.LanguageGerman)[id])
}

func TestGenerator_DropsIncompleteCandidates(t *testing.T) {
	f := newFixture(t)

	f.llm.responses = []string{mustJSON(t, []any{
		candidateJSON(heartEN, "Kurz.", 90, nil, nil),
		candidateJSON("Be still, and know that I am God.", "Seid stille und erkennet, dass ich Gott bin.", 85, nil, nil),
	})}

	quotes, err := f.generator.GenerateForSearch(context.Background(), GenerationRequest{
		Query:           "peace",
		NormalizedQuery: "peace",
		Language:        domain.LanguageEnglish,
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Be still, and know that I am God.", quotes[0].Text)
}

func TestGenerator_Failures(t *testing.T) {
	req := GenerationRequest{Query: "peace", NormalizedQuery: "peace", Language: domain.LanguageEnglish}

	t.Run("unparseable response", func(t *testing.T) {
		f := newFixture(t)
		f.llm.responses = []string{"I'm sorry, I can't help with that."}
		_, err := f.generator.GenerateForSearch(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	})

	t.Run("no complete candidate", func(t *testing.T) {
		f := newFixture(t)
		f.llm.responses = []string{mustJSON(t, []any{candidateJSON(heartEN, "", 90, nil, nil)})}
		_, err := f.generator.GenerateForSearch(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
		count, cerr := f.store.Quotes.Count(context.Background())
		require.NoError(t, cerr)
		assert.Zero(t, count)
	})

	t.Run("service error", func(t *testing.T) {
		f := newFixture(t)
		f.llm.err = domain.ErrAIRateLimitExceeded
		_, err := f.generator.GenerateForSearch(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrAIRateLimitExceeded)
	})

	t.Run("no service configured", func(t *testing.T) {
		f := newFixture(t).withoutLLM()
		_, err := f.generator.GenerateForSearch(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
	})
}

func TestGenerator_PromptIncludesAvoidList(t *testing.T) {
	f := newFixture(t)
	f.llm.responses = []string{mustJSON(t, []any{candidateJSON(heartEN, heartDE, 90, nil, nil)})}

	_, err := f.generator.GenerateForSearch(context.Background(), GenerationRequest{
		Query:           "peace",
		NormalizedQuery: "peace",
		Language:        domain.LanguageEnglish,
		Count:           3,
		Avoid:           []string{"Peace I leave with you."},
	})
	require.NoError(t, err)

	require.Len(t, f.llm.messages, 1)
	user := f.llm.messages[0][1].Content
	assert.Contains(t, user, "Find 3 quotes")
	assert.Contains(t, user, "- Peace I leave with you.")
	assert.Equal(t, "system", f.llm.messages[0][0].Role)
}

func TestGenerator_PromptStoreOverride(t *testing.T) {
	f := newFixture(t)
	f.generator.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		"search_user": "custom %d %s %s %s",
	}})
	f.llm.responses = []string{mustJSON(t, []any{candidateJSON(heartEN, heartDE, 90, nil, nil)})}

	_, err := f.generator.GenerateForSearch(context.Background(), GenerationRequest{
		Query: "peace", NormalizedQuery: "peace", Language: domain.LanguageEnglish, Count: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "custom 2 peace English (none)", f.llm.messages[0][1].Content)
	assert.Equal(t, DefaultPrompts["search_system"], f.llm.messages[0][0].Content)
}

func TestGenerator_KeepsQuoteWhenOriginMappingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addContext("broken heart", domain.LanguageEnglish, "", 0)

	gen := NewGenerator(f.llm, f.store.Quotes, &failingMappings{ContextStore: f.store.Contexts, contextID: c.ID},
		f.settings, f.clock)
	gen.SetRetryPolicy(RetryPolicy{Attempts: 1})
	f.llm.responses = []string{mustJSON(t, []any{
		candidateJSON(heartEN, heartDE, 90, []string{"heartache"}, nil),
	})}

	quotes, err := gen.GenerateForSearch(ctx, GenerationRequest{
		Query:           "broken heart",
		NormalizedQuery: "broken heart",
		Language:        domain.LanguageEnglish,
		ContextID:       c.ID,
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	_, err = f.store.Quotes.Get(ctx, quotes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, mappingScores(t, f, "broken heart", domain.LanguageEnglish))
	assert.Contains(t, mappingScores(t, f, "heartache", domain.LanguageEnglish), quotes[0].ID)
}
