package mcp

import (
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs aggregated searches and carries the registry
	// passthroughs the provider tools use.
	Search driving.SearchService

	// Cache backs the cache statistics resource.
	Cache driving.CacheService

	// History records completed searches.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Cache and History are optional; the affected surfaces degrade.
	return nil
}
