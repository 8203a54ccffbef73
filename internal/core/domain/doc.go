// Package domain defines the core business entities for Lumen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Quote: A unit of content with optional translations
//   - SearchContext: A normalised search query acting as a cache key
//   - QuoteContextMapping: A scored edge between a quote and a context
//   - SearchCategory / SynonymGroup: Static taxonomy used for matching
//   - UserSearchLimits / UserQuoteHistory / UserFavorite: Per-user state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
