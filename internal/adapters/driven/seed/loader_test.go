package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

func TestDefault(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	assert.Len(t, data.Categories, 8)
	assert.NotEmpty(t, data.SynonymGroups)
	assert.GreaterOrEqual(t, len(data.Quotes), 20)

	for _, c := range data.Categories {
		for _, lang := range domain.SupportedLanguages {
			assert.NotEmpty(t, c.DisplayNames[lang], "category %s display %s", c.ID, lang)
			assert.NotEmpty(t, c.Keywords[lang], "category %s keywords %s", c.ID, lang)
		}
	}
	for _, q := range data.Quotes {
		assert.Equal(t, domain.QuoteSourceStatic, q.Source)
		for _, lang := range domain.SupportedLanguages {
			assert.True(t, q.HasLanguage(lang), "quote %s missing %s", q.ID, lang)
		}
	}
}

func TestDefault_GermanPrimaryQuote(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	var hesse *domain.Quote
	for i := range data.Quotes {
		if data.Quotes[i].ID == "seed-hesse-beginning" {
			hesse = &data.Quotes[i]
		}
	}
	require.NotNil(t, hesse)
	assert.Equal(t, domain.LanguageGerman, hesse.Language)
	assert.Equal(t, "Stages", hesse.Translations[domain.LanguageEnglish].Reference)
	_, hasGerman := hesse.Translations[domain.LanguageGerman]
	assert.False(t, hasGerman)
}

func TestLoad(t *testing.T) {
	in := `
[[categories]]
id = "work"
display = { en = "Work", DE = "Arbeit" }
keywords.en = ["job"]

[[synonyms]]
id = "s1"
name = "tired"
terms.de = ["muede"]

[[quotes]]
id = "q1"
text = "Keep going."
premium = true
tags = ["work"]
[quotes.translations.de]
text = "Weitermachen."
`
	data, err := Load(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, data.Categories, 1)
	cat := data.Categories[0]
	assert.Equal(t, "work", cat.Name)
	assert.Equal(t, "Arbeit", cat.DisplayNames[domain.LanguageGerman])
	assert.Equal(t, []string{"job"}, cat.Keywords[domain.LanguageEnglish])

	require.Len(t, data.SynonymGroups, 1)
	assert.Equal(t, []string{"muede"}, data.SynonymGroups[0].Terms[domain.LanguageGerman])

	require.Len(t, data.Quotes, 1)
	q := data.Quotes[0]
	assert.Equal(t, domain.LanguageEnglish, q.Language)
	assert.True(t, q.IsPremium)
	assert.Equal(t, "Weitermachen.", q.Translations[domain.LanguageGerman].Text)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `[[quotes]`},
		{"unknown key", "[[quotes]]\nid = \"q\"\ntext = \"t\"\nauthr = \"x\"\n"},
		{"unsupported language", "[[quotes]]\nid = \"q\"\ntext = \"t\"\nlanguage = \"fr\"\n"},
		{"missing quote id", "[[quotes]]\ntext = \"t\"\n"},
		{"duplicate quote", "[[quotes]]\nid = \"q\"\ntext = \"a\"\n[[quotes]]\nid = \"q\"\ntext = \"b\"\n"},
		{"self translation", "[[quotes]]\nid = \"q\"\ntext = \"a\"\n[quotes.translations.en]\ntext = \"b\"\n"},
		{"category language", "[[categories]]\nid = \"c\"\nkeywords.xx = [\"a\"]\n"},
		{"synonym without id", "[[synonyms]]\nname = \"n\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedLanguageWrapsSentinel(t *testing.T) {
	_, err := Load(strings.NewReader("[[quotes]]\nid = \"q\"\ntext = \"t\"\nlanguage = \"fr\"\n"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}
