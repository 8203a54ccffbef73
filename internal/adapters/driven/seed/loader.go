package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

//go:embed seed.toml
var defaultSeed []byte

type fileFormat struct {
	Categories []categoryEntry `toml:"categories"`
	Synonyms   []synonymEntry  `toml:"synonyms"`
	Quotes     []quoteEntry    `toml:"quotes"`
}

type categoryEntry struct {
	ID       string              `toml:"id"`
	Name     string              `toml:"name"`
	Display  map[string]string   `toml:"display"`
	Keywords map[string][]string `toml:"keywords"`
}

type synonymEntry struct {
	ID    string              `toml:"id"`
	Name  string              `toml:"name"`
	Terms map[string][]string `toml:"terms"`
}

type bundleEntry struct {
	Text        string   `toml:"text"`
	Reference   string   `toml:"reference"`
	Context     string   `toml:"context"`
	Explanation string   `toml:"explanation"`
	Situations  []string `toml:"situations"`
	Tags        []string `toml:"tags"`
}

type quoteEntry struct {
	Text         string                 `toml:"text"`
	Reference    string                 `toml:"reference"`
	Context      string                 `toml:"context"`
	Explanation  string                 `toml:"explanation"`
	Situations   []string               `toml:"situations"`
	Tags         []string               `toml:"tags"`
	ID           string                 `toml:"id"`
	Author       string                 `toml:"author"`
	Language     string                 `toml:"language"`
	Premium      bool                   `toml:"premium"`
	Translations map[string]bundleEntry `toml:"translations"`
}

// Default returns the embedded seed data.
func Default() (domain.SeedData, error) {
	return Load(bytes.NewReader(defaultSeed))
}

// Load decodes seed data from r. Unknown keys are rejected so typos in
// hand-edited files surface instead of silently dropping content.
func Load(r io.Reader) (domain.SeedData, error) {
	var f fileFormat
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return domain.SeedData{}, fmt.Errorf("decode seed: %w", err)
	}

	var data domain.SeedData
	for _, c := range f.Categories {
		cat, err := c.toDomain()
		if err != nil {
			return domain.SeedData{}, err
		}
		data.Categories = append(data.Categories, cat)
	}
	for _, s := range f.Synonyms {
		g, err := s.toDomain()
		if err != nil {
			return domain.SeedData{}, err
		}
		data.SynonymGroups = append(data.SynonymGroups, g)
	}
	seen := make(map[string]bool, len(f.Quotes))
	for _, q := range f.Quotes {
		if seen[q.ID] {
			return domain.SeedData{}, fmt.Errorf("%w: duplicate seed quote %q", domain.ErrInvalidInput, q.ID)
		}
		seen[q.ID] = true
		quote, err := q.toDomain()
		if err != nil {
			return domain.SeedData{}, err
		}
		data.Quotes = append(data.Quotes, quote)
	}
	return data, nil
}

func (c categoryEntry) toDomain() (domain.SearchCategory, error) {
	if c.ID == "" {
		return domain.SearchCategory{}, fmt.Errorf("%w: category without id", domain.ErrInvalidInput)
	}
	name := c.Name
	if name == "" {
		name = c.ID
	}
	display := make(map[domain.Language]string, len(c.Display))
	for code, label := range c.Display {
		lang, err := parseLanguageKey(code, "category "+c.ID)
		if err != nil {
			return domain.SearchCategory{}, err
		}
		display[lang] = label
	}
	keywords, err := languageLists(c.Keywords, "category "+c.ID)
	if err != nil {
		return domain.SearchCategory{}, err
	}
	return domain.SearchCategory{
		ID:           c.ID,
		Name:         name,
		DisplayNames: display,
		Keywords:     keywords,
	}, nil
}

func (s synonymEntry) toDomain() (domain.SynonymGroup, error) {
	if s.ID == "" {
		return domain.SynonymGroup{}, fmt.Errorf("%w: synonym group without id", domain.ErrInvalidInput)
	}
	terms, err := languageLists(s.Terms, "synonym group "+s.ID)
	if err != nil {
		return domain.SynonymGroup{}, err
	}
	return domain.SynonymGroup{ID: s.ID, Name: s.Name, Terms: terms}, nil
}

func (q quoteEntry) toDomain() (domain.Quote, error) {
	if q.ID == "" {
		return domain.Quote{}, fmt.Errorf("%w: quote without id", domain.ErrInvalidInput)
	}
	lang, err := domain.ParseLanguage(q.Language)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote %s: %w", q.ID, err)
	}
	quote := domain.Quote{
		ID:          q.ID,
		Text:        q.Text,
		Author:      q.Author,
		Reference:   q.Reference,
		Source:      domain.QuoteSourceStatic,
		Language:    lang,
		IsPremium:   q.Premium,
		Context:     q.Context,
		Explanation: q.Explanation,
		Situations:  q.Situations,
		Tags:        q.Tags,
	}

	// Sorted so error messages are stable.
	codes := make([]string, 0, len(q.Translations))
	for code := range q.Translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		tl, err := parseLanguageKey(code, "quote "+q.ID)
		if err != nil {
			return domain.Quote{}, err
		}
		if tl == lang {
			return domain.Quote{}, fmt.Errorf("%w: quote %s translates into its own language %s",
				domain.ErrInvalidInput, q.ID, tl)
		}
		if quote.Translations == nil {
			quote.Translations = make(map[domain.Language]domain.Translation)
		}
		t := q.Translations[code]
		quote.Translations[tl] = domain.Translation{
			Text:        t.Text,
			Reference:   t.Reference,
			Context:     t.Context,
			Explanation: t.Explanation,
			Situations:  t.Situations,
			Tags:        t.Tags,
		}
	}
	return quote, nil
}

func languageLists(in map[string][]string, owner string) (map[domain.Language][]string, error) {
	out := make(map[domain.Language][]string, len(in))
	for code, list := range in {
		lang, err := parseLanguageKey(code, owner)
		if err != nil {
			return nil, err
		}
		out[lang] = list
	}
	return out, nil
}

func parseLanguageKey(code, owner string) (domain.Language, error) {
	if code == "" {
		return "", fmt.Errorf("%w: %s has an empty language key", domain.ErrInvalidInput, owner)
	}
	lang, err := domain.ParseLanguage(code)
	if err != nil {
		return "", fmt.Errorf("%s: %w", owner, err)
	}
	return lang, nil
}
