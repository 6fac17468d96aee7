package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"the search query to fan out to every enabled provider"`
	Limit     int      `json:"limit,omitempty" jsonschema:"per-provider result count hint (0 lets each provider choose)"`
	Sort      string   `json:"sort,omitempty" jsonschema:"result ordering: relevance, recency or source (default relevance)"`
	Providers []string `json:"providers,omitempty" jsonschema:"restrict the fan-out to these provider ids"`
	Refresh   bool     `json:"refresh,omitempty" jsonschema:"bypass cached provider results for this search"`
}

// SearchOutput is the output schema for the search tool. Provider
// failures are part of the payload, not tool errors: a failing provider
// never makes the whole search fail.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Errors  []SearchErrorOutput  `json:"errors"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single aggregated result.
type SearchResultOutput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	URL           string   `json:"url"`
	Score         float64  `json:"score"`
	Timestamp     *int64   `json:"timestamp,omitempty"`
	Providers     []string `json:"providers"`
	ProviderNames []string `json:"provider_names"`
}

// SearchErrorOutput is one provider failure carried as data.
type SearchErrorOutput struct {
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	Error        string `json:"error"`
}

// ListProvidersInput is the (empty) input schema for list_providers.
type ListProvidersInput struct{}

// ListProvidersOutput is the output schema for list_providers.
type ListProvidersOutput struct {
	Providers []ProviderOutput `json:"providers"`
}

// ProviderOutput describes one registered provider.
type ProviderOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// SetProviderEnabledInput is the input schema for set_provider_enabled.
type SetProviderEnabledInput struct {
	ID      string `json:"id" jsonschema:"the provider id to change"`
	Enabled bool   `json:"enabled" jsonschema:"the new enabled flag"`
}

// SetProviderEnabledOutput is the output schema for set_provider_enabled.
type SetProviderEnabledOutput struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Run an aggregated search across the enabled providers",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_providers",
		Description: "List the registered search providers and their enabled state",
	}, s.handleListProviders)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_provider_enabled",
		Description: "Enable or disable one search provider",
	}, s.handleSetProviderEnabled)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	sort, err := domain.ParseSortPolicy(input.Sort)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	opts := domain.SearchOptions{
		Limit:     input.Limit,
		Sort:      sort,
		Providers: input.Providers,
		Refresh:   input.Refresh,
	}

	providerCount := fanOutCount(s.ports.Search.EnabledIDs(), input.Providers)

	started := time.Now()
	snapshot := s.ports.Search.Search(ctx, input.Query, opts)

	if s.ports.History != nil {
		s.ports.History.Record(ctx, domain.SearchRecord{
			Query:         input.Query,
			Sort:          sort,
			Limit:         input.Limit,
			ProviderCount: providerCount,
			ResultCount:   len(snapshot.Results),
			ErrorCount:    len(snapshot.Errors),
			Duration:      time.Since(started),
			ExecutedAt:    started,
		})
	}

	return nil, snapshotOutput(snapshot), nil
}

// handleListProviders handles the list_providers tool invocation.
func (s *Server) handleListProviders(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListProvidersInput,
) (*mcp.CallToolResult, ListProvidersOutput, error) {
	infos := s.ports.Search.List()

	output := ListProvidersOutput{
		Providers: make([]ProviderOutput, len(infos)),
	}
	for i, info := range infos {
		output.Providers[i] = ProviderOutput{
			ID:          info.ID,
			Name:        info.Name,
			Description: info.Description,
			Enabled:     info.Enabled,
		}
	}

	return nil, output, nil
}

// handleSetProviderEnabled handles the set_provider_enabled tool invocation.
func (s *Server) handleSetProviderEnabled(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SetProviderEnabledInput,
) (*mcp.CallToolResult, SetProviderEnabledOutput, error) {
	if err := s.ports.Search.SetEnabled(input.ID, input.Enabled); err != nil {
		return nil, SetProviderEnabledOutput{}, err
	}

	return nil, SetProviderEnabledOutput{
		ID:      input.ID,
		Enabled: input.Enabled,
	}, nil
}

// snapshotOutput maps a snapshot into the tool output shape.
func snapshotOutput(snapshot domain.SearchSnapshot) SearchOutput {
	output := SearchOutput{
		Results: make([]SearchResultOutput, len(snapshot.Results)),
		Errors:  make([]SearchErrorOutput, len(snapshot.Errors)),
		Count:   len(snapshot.Results),
	}

	for i, r := range snapshot.Results {
		output.Results[i] = SearchResultOutput{
			ID:            r.ID,
			Title:         r.Title,
			Description:   r.Description,
			URL:           r.URL,
			Score:         r.Score,
			Timestamp:     r.Timestamp,
			Providers:     r.Providers,
			ProviderNames: r.ProviderNames,
		}
	}
	for i, e := range snapshot.Errors {
		output.Errors[i] = SearchErrorOutput{
			ProviderID:   e.ProviderID,
			ProviderName: e.ProviderName,
			Error:        e.Err.Error(),
		}
	}

	return output
}

// fanOutCount counts the providers a search with this restriction
// reaches: the enabled set, narrowed to the requested ids when given.
func fanOutCount(enabled, requested []string) int {
	if len(requested) == 0 {
		return len(enabled)
	}
	allowed := make(map[string]bool, len(requested))
	for _, id := range requested {
		allowed[id] = true
	}
	n := 0
	for _, id := range enabled {
		if allowed[id] {
			n++
		}
	}
	return n
}
