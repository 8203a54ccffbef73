package driving

import "github.com/custodia-labs/lumen/internal/core/domain"

// SettingsService exposes the effective configuration.
type SettingsService interface {
	// Search returns the search heuristics.
	Search() domain.SearchSettings

	// AI returns the generation service settings.
	AI() domain.AISettings

	// SetAPIKey stores the generation service API key.
	SetAPIKey(key string) error
}
