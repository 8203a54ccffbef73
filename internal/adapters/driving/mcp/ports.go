package mcp

import (
	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides smart search and quota checks.
	Search driving.SearchService

	// Taxonomy exposes categories and synonym groups.
	Taxonomy driving.TaxonomyService

	// Session is the identity every tool call runs as. The stdio transport
	// has no per-request credentials, so it is resolved once at startup.
	// A zero Session is anonymous.
	Session domain.Session
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Taxonomy == nil {
		return ErrMissingTaxonomyService
	}
	return nil
}
