package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Metcha resources.
	uriScheme = "metcha://"

	// cacheStatsURI addresses the cache statistics resource.
	cacheStatsURI = uriScheme + "cache/stats"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         cacheStatsURI,
		Name:        "cache-stats",
		Description: "Statistics for the on-disk provider result cache",
		MIMEType:    "application/json",
	}, s.handleCacheStatsResource)
}

// handleCacheStatsResource returns the current cache statistics.
func (s *Server) handleCacheStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Cache == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Cache.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading cache stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling cache stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
