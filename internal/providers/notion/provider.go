// Package notion implements a search provider over a Notion workspace.
// It searches the pages shared with the integration token and maps each
// page's last edit time onto the result timestamp; Notion exposes no
// relevance score.
package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

const (
	// defaultLimit keeps pages cheap to render in listings.
	defaultLimit = 20

	// maxLimit is the API's page_size ceiling.
	maxLimit = 100

	// requestsPerSecond stays under Notion's documented 3 req/sec average.
	requestsPerSecond = 3.0
)

// Ensure Provider implements the driven ports.
var (
	_ driven.Provider  = (*Provider)(nil)
	_ driven.Describer = (*Provider)(nil)
)

// Provider queries the Notion search API.
type Provider struct {
	client  *notionapi.Client
	limiter *rate.Limiter
}

// New creates a Notion provider authenticated with an integration token.
func New(token string) *Provider {
	return &Provider{
		client:  notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// ID returns the provider id.
func (p *Provider) ID() string { return "notion" }

// Name returns the display name.
func (p *Provider) Name() string { return "Notion" }

// Description returns a short description for listings.
func (p *Provider) Description() string {
	return "Page search across a Notion workspace (requires NOTION_TOKEN)"
}

// Search runs a page search across everything shared with the integration.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	if ctx.Err() != nil {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := p.client.Search.Do(ctx, searchRequest(query, limit))
	if err != nil {
		return nil, fmt.Errorf("notion search: %w", err)
	}

	return mapResults(resp.Results), nil
}

// searchRequest builds a page-filtered search sorted by last edit.
func searchRequest(query string, limit int) *notionapi.SearchRequest {
	return &notionapi.SearchRequest{
		Query:    query,
		PageSize: clampLimit(limit),
		Filter: notionapi.SearchFilter{
			Value:    "page",
			Property: "object",
		},
		Sort: &notionapi.SortObject{
			Direction: notionapi.SortOrderDESC,
			Timestamp: notionapi.TimestampLastEdited,
		},
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}

// mapResults keeps live pages and drops everything else the API slips
// past the filter.
func mapResults(objects []notionapi.Object) []domain.RawResult {
	var results []domain.RawResult
	for _, obj := range objects {
		page, ok := obj.(*notionapi.Page)
		if !ok || page.Archived {
			continue
		}
		results = append(results, pageResult(page))
	}
	return results
}

func pageResult(page *notionapi.Page) domain.RawResult {
	result := domain.RawResult{
		Title: pageTitle(page),
		URL:   page.URL,
		Metadata: map[string]any{
			"object": "page",
			"id":     string(page.ID),
		},
	}
	if result.Title == "" {
		// Notion renders titleless pages as "Untitled".
		result.Title = "Untitled"
	}
	if !page.LastEditedTime.IsZero() {
		ms := page.LastEditedTime.UnixMilli()
		result.Timestamp = &ms
	}
	return result
}

// pageTitle extracts the page's title property. Notion stores it under a
// caller-chosen property name, so the lookup scans for the title type.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(tp.Title)
		}
	}
	return ""
}

func plainText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return b.String()
}
