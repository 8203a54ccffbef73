package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// ==================== Quote Store ====================

// quoteStore implements driven.QuoteStore.
type quoteStore struct {
	store *Store
}

var _ driven.QuoteStore = (*quoteStore)(nil)

const quoteColumns = `id, text, author, reference, source, language, is_premium,
	context, explanation, situations, tags, translations, ai_prompt, created_at`

// Save stores or replaces a quote.
func (s *quoteStore) Save(ctx context.Context, quote *domain.Quote) error {
	situations, err := marshalJSON(nonNil(quote.Situations))
	if err != nil {
		return fmt.Errorf("marshalling situations: %w", err)
	}
	tags, err := marshalJSON(nonNil(quote.Tags))
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	translations := quote.Translations
	if translations == nil {
		translations = map[domain.Language]domain.Translation{}
	}
	translationsJSON, err := marshalJSON(translations)
	if err != nil {
		return fmt.Errorf("marshalling translations: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			author = excluded.author,
			reference = excluded.reference,
			source = excluded.source,
			language = excluded.language,
			is_premium = excluded.is_premium,
			context = excluded.context,
			explanation = excluded.explanation,
			situations = excluded.situations,
			tags = excluded.tags,
			translations = excluded.translations,
			ai_prompt = excluded.ai_prompt
	`, quote.ID, quote.Text, quote.Author, quote.Reference, string(quote.Source), string(quote.Language),
		boolToInt(quote.IsPremium), quote.Context, quote.Explanation, situations, tags,
		translationsJSON, quote.AIPrompt, toMillis(quote.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving quote: %w", err)
	}
	return nil
}

// Get retrieves a quote by ID.
func (s *quoteStore) Get(ctx context.Context, id string) (*domain.Quote, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)
	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return quote, err
}

// GetMany retrieves the quotes with the given IDs.
func (s *quoteStore) GetMany(ctx context.Context, ids []string) ([]domain.Quote, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

// List returns up to limit quotes, newest first.
func (s *quoteStore) List(ctx context.Context, limit int) ([]domain.Quote, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

// ListMissingTranslation returns quotes with no bundle text in lang.
func (s *quoteStore) ListMissingTranslation(ctx context.Context, lang domain.Language, limit int) ([]domain.Quote, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE language != ?
		  AND COALESCE(json_extract(translations, '$.' || ? || '.text'), '') = ''
		ORDER BY created_at DESC, id
		LIMIT ?
	`, string(lang), string(lang), limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("querying untranslated quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

// SetTranslation stores the bundle for lang on a quote.
func (s *quoteStore) SetTranslation(ctx context.Context, id string, lang domain.Language, t domain.Translation) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var primary, translationsJSON string
	err = tx.QueryRowContext(ctx, `SELECT language, translations FROM quotes WHERE id = ?`, id).
		Scan(&primary, &translationsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading translations: %w", err)
	}
	if domain.Language(primary) == lang {
		return fmt.Errorf("%w: %s is the primary language of quote %s", domain.ErrInvalidInput, lang, id)
	}

	translations := map[domain.Language]domain.Translation{}
	if err := unmarshalJSON(translationsJSON, &translations); err != nil {
		return fmt.Errorf("unmarshalling translations: %w", err)
	}
	translations[lang] = t

	updated, err := marshalJSON(translations)
	if err != nil {
		return fmt.Errorf("marshalling translations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE quotes SET translations = ? WHERE id = ?`, updated, id); err != nil {
		return fmt.Errorf("updating translations: %w", err)
	}
	return tx.Commit()
}

// Count returns the number of stored quotes.
func (s *quoteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting quotes: %w", err)
	}
	return n, nil
}

func scanQuote(row rowScanner) (*domain.Quote, error) {
	var q domain.Quote
	var source, lang, situations, tags, translations string
	var premium int
	var createdAt int64
	if err := row.Scan(&q.ID, &q.Text, &q.Author, &q.Reference, &source, &lang, &premium,
		&q.Context, &q.Explanation, &situations, &tags, &translations, &q.AIPrompt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning quote: %w", err)
	}

	q.Source = domain.QuoteSource(source)
	q.Language = domain.Language(lang)
	q.IsPremium = premium != 0
	q.CreatedAt = fromMillis(createdAt)
	if err := unmarshalJSON(situations, &q.Situations); err != nil {
		return nil, fmt.Errorf("unmarshalling situations: %w", err)
	}
	if err := unmarshalJSON(tags, &q.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	if err := unmarshalJSON(translations, &q.Translations); err != nil {
		return nil, fmt.Errorf("unmarshalling translations: %w", err)
	}
	if len(q.Translations) == 0 {
		q.Translations = nil
	}
	return &q, nil
}

func scanQuotes(rows *sql.Rows) ([]domain.Quote, error) {
	var quotes []domain.Quote //nolint:prealloc // size unknown from query
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}
	return quotes, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// limitOrAll maps a non-positive limit to SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
