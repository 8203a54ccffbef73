// Package sqlite provides a unified SQLite-based implementation of the driven
// store interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every store through a
// single database connection:
//
//   - QuoteStore: quotes with their translation bundles
//   - ContextStore: search contexts and quote-context mappings
//   - LimitStore: per-user daily search counters
//   - HistoryStore: shown quotes and user searches
//   - FavoriteStore: user favourites
//   - TaxonomyStore: categories and synonym groups
//
// # Schema
//
// The schema is managed by golang-migrate from versioned migrations embedded
// from the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Concurrency
//
// Uniqueness rules are UNIQUE constraints; every write that could race is a
// single INSERT ... ON CONFLICT statement. Counters are incremented in SQL.
//
// # Data Location
//
// By default, the database is stored at ~/.lumen/data/lumen.db
package sqlite
