package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

func TestQuoteStore_SaveGetIsolation(t *testing.T) {
	store := NewQuoteStore()
	ctx := context.Background()

	q := &domain.Quote{
		ID:       "q1",
		Text:     "Be still, and know that I am God.",
		Language: domain.LanguageEnglish,
		Translations: map[domain.Language]domain.Translation{
			domain.LanguageGerman: {Text: "Seid stille und erkennet, dass ich Gott bin."},
		},
	}
	require.NoError(t, store.Save(ctx, q))
	q.Translations[domain.LanguageGerman] = domain.Translation{Text: "changed"}

	got, err := store.Get(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Seid stille und erkennet, dass ich Gott bin.", got.Translations[domain.LanguageGerman].Text)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuoteStore_ListAndMissingTranslation(t *testing.T) {
	store := NewQuoteStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &domain.Quote{ID: "old", Text: "a", Language: domain.LanguageEnglish, CreatedAt: base}))
	require.NoError(t, store.Save(ctx, &domain.Quote{ID: "new", Text: "b", Language: domain.LanguageEnglish, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &domain.Quote{ID: "de", Text: "c", Language: domain.LanguageGerman, CreatedAt: base}))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)

	missing, err := store.ListMissingTranslation(ctx, domain.LanguageGerman, 10)
	require.NoError(t, err)
	assert.Len(t, missing, 2)

	require.NoError(t, store.SetTranslation(ctx, "old", domain.LanguageGerman, domain.Translation{Text: "alt"}))
	missing, err = store.ListMissingTranslation(ctx, domain.LanguageGerman, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "new", missing[0].ID)

	assert.ErrorIs(t, store.SetTranslation(ctx, "de", domain.LanguageGerman, domain.Translation{Text: "x"}), domain.ErrInvalidInput)
}

func TestContextStore_RecordAndEnsure(t *testing.T) {
	store := NewContextStore()
	ctx := context.Background()

	c, err := store.RecordContext(ctx, domain.SearchContext{ID: "a", NormalizedQuery: "hope", Language: domain.LanguageEnglish})
	require.NoError(t, err)
	assert.Equal(t, 1, c.SearchCount)

	c, err = store.RecordContext(ctx, domain.SearchContext{ID: "b", NormalizedQuery: "hope", Language: domain.LanguageEnglish, CategoryID: "hope"})
	require.NoError(t, err)
	assert.Equal(t, "a", c.ID)
	assert.Equal(t, 2, c.SearchCount)
	assert.Equal(t, "hope", c.CategoryID)

	e, err := store.EnsureContext(ctx, domain.SearchContext{ID: "c", NormalizedQuery: "hope", Language: domain.LanguageEnglish})
	require.NoError(t, err)
	assert.Equal(t, "a", e.ID)
	assert.Equal(t, 2, e.SearchCount)

	fresh, err := store.EnsureContext(ctx, domain.SearchContext{ID: "d", NormalizedQuery: "peace", Language: domain.LanguageEnglish})
	require.NoError(t, err)
	assert.Zero(t, fresh.SearchCount)
}

func TestContextStore_UpsertMappingMaxScore(t *testing.T) {
	store := NewContextStore()
	ctx := context.Background()

	_, err := store.UpsertMapping(ctx, domain.QuoteContextMapping{ID: "m1", QuoteID: "q", ContextID: "c", RelevanceScore: 70})
	require.NoError(t, err)
	m, err := store.UpsertMapping(ctx, domain.QuoteContextMapping{ID: "m2", QuoteID: "q", ContextID: "c", RelevanceScore: 40})
	require.NoError(t, err)
	assert.Equal(t, 70, m.RelevanceScore)
	m, err = store.UpsertMapping(ctx, domain.QuoteContextMapping{ID: "m3", QuoteID: "q", ContextID: "c", RelevanceScore: 90})
	require.NoError(t, err)
	assert.Equal(t, 90, m.RelevanceScore)
	assert.Equal(t, "m1", m.ID)

	all, err := store.MappingsForContexts(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLimitStore_ConcurrentIncrement(t *testing.T) {
	store := NewLimitStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment(ctx, "u", "2025-01-01", driven.CounterSearch)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	l, err := store.Get(ctx, "u", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, 100, l.SearchCount)
	assert.Zero(t, l.AISearchCount)
}

func TestHistoryStore_DedupAndWindow(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	row := domain.UserQuoteHistory{ID: "1", UserID: "u", QuoteID: "q", ShownDate: "2025-01-10", Kind: domain.HistoryDaily}
	require.NoError(t, store.RecordShown(ctx, row))
	row.ID = "2"
	require.NoError(t, store.RecordShown(ctx, row))
	require.NoError(t, store.RecordShown(ctx, domain.UserQuoteHistory{ID: "3", UserID: "u", QuoteID: "old", ShownDate: "2024-01-01"}))

	on, err := store.ShownOn(ctx, "u", "2025-01-10", domain.HistoryDaily)
	require.NoError(t, err)
	assert.Len(t, on, 1)

	ids, err := store.ShownSince(ctx, "u", "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, ids)
}

func TestFavoriteStore_NewestFirst(t *testing.T) {
	store := NewFavoriteStore()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Add(ctx, domain.UserFavorite{UserID: "u", QuoteID: "a", CreatedAt: t0}))
	require.NoError(t, store.Add(ctx, domain.UserFavorite{UserID: "u", QuoteID: "b", CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, store.Add(ctx, domain.UserFavorite{UserID: "other", QuoteID: "a", CreatedAt: t0}))

	favs, err := store.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "b", favs[0].QuoteID)

	require.NoError(t, store.Remove(ctx, "u", "b"))
	favs, err = store.List(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}

func TestStore_Reset(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Quotes.Save(ctx, &domain.Quote{ID: "q", Text: "x", Language: domain.LanguageEnglish}))
	require.NoError(t, store.Taxonomy.SaveCategory(ctx, domain.SearchCategory{ID: "grief"}))
	_, err := store.Limits.Increment(ctx, "u", "2025-01-01", driven.CounterAI)
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	n, err := store.Quotes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	cats, err := store.Taxonomy.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
	_, err = store.Limits.Get(ctx, "u", "2025-01-01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
