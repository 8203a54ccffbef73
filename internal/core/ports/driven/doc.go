// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - QuoteStore: Quote persistence and full-text scan source
//   - ContextStore: Search contexts and quote/context mappings
//   - LimitStore: Per-user, per-day search counters
//   - HistoryStore: Quote exposure and search history
//   - FavoriteStore: User favourites
//   - TaxonomyStore: Categories and synonym groups
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: The generation service. Without it, searches that need AI
//     fail with a configuration error and translation backfill is disabled.
//   - PromptStore: User-editable prompt templates. Without it, embedded defaults are used.
//   - SessionResolver: Bearer token validation for the HTTP API.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
