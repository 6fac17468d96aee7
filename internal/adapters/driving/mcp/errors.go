// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Metcha. It lets AI assistants run aggregated searches, inspect and flip
// provider state, and read cache statistics.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
