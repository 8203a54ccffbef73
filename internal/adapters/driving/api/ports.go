// Package api serves the lumen search engine over a JSON HTTP API.
package api

import (
	"errors"

	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
)

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("api: search service is required")

	// ErrMissingSessions is returned when no session resolver is provided.
	ErrMissingSessions = errors.New("api: session resolver is required")
)

// Ports aggregates the services the HTTP API exposes.
type Ports struct {
	Search   driving.SearchService
	Taxonomy driving.TaxonomyService
	Quotes   driving.QuoteService

	// Sessions turns bearer tokens into caller identities.
	Sessions driven.SessionResolver
}

// Validate ensures the required ports are set.
// Taxonomy and Quotes are optional; their routes answer 503 when absent.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Sessions == nil {
		return ErrMissingSessions
	}
	return nil
}
