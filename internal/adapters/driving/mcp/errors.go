// Package mcp provides an MCP (Model Context Protocol) server adapter for lumen.
// It lets AI assistants run smart searches and inspect the search taxonomy.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingTaxonomyService is returned when the taxonomy service is not provided.
	ErrMissingTaxonomyService = errors.New("mcp: taxonomy service is required")
)
