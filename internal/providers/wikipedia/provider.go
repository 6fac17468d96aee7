// Package wikipedia implements a search provider backed by the MediaWiki
// search API on English Wikipedia.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

// apiBase is the MediaWiki API endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://en.wikipedia.org/w/api.php"

const (
	// articleBase prefixes article URLs built from page titles.
	articleBase = "https://en.wikipedia.org/wiki/"

	// defaultLimit is used when the caller passes no result-count hint.
	defaultLimit = 10

	// maxLimit is the srlimit ceiling for unprivileged API clients.
	maxLimit = 50

	requestTimeout = 10 * time.Second

	userAgent = "metcha-cli"
)

// tagPattern strips the searchmatch markup MediaWiki embeds in snippets.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Ensure Provider implements the driven ports.
var (
	_ driven.Provider  = (*Provider)(nil)
	_ driven.Describer = (*Provider)(nil)
)

// Provider queries the MediaWiki search API.
type Provider struct {
	client *http.Client
}

// New creates a Wikipedia provider. No credentials are required.
func New() *Provider {
	return &Provider{
		client: &http.Client{Timeout: requestTimeout},
	}
}

// ID returns the provider id.
func (p *Provider) ID() string { return "wikipedia" }

// Name returns the display name.
func (p *Provider) Name() string { return "Wikipedia" }

// Description returns a short description for listings.
func (p *Provider) Description() string {
	return "Article search on English Wikipedia via the MediaWiki search API"
}

// Search runs a full-text article search. Results carry the page's last
// edit time but no score; Wikipedia ranks without exposing one.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	if ctx.Err() != nil {
		return nil, nil
	}

	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprintf("%d", clampLimit(limit))},
		"srprop":   {"snippet|timestamp|wordcount"},
		"format":   {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: wikipedia returned HTTP %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing wikipedia response: %w", err)
	}

	results := make([]domain.RawResult, 0, len(payload.Query.Search))
	for _, page := range payload.Query.Search {
		results = append(results, pageResult(page))
	}
	return results, nil
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

// searchResponse is the subset of the list=search payload the provider reads.
type searchResponse struct {
	Query struct {
		Search []searchPage `json:"search"`
	} `json:"query"`
}

type searchPage struct {
	Title     string `json:"title"`
	PageID    int    `json:"pageid"`
	Snippet   string `json:"snippet"`
	Timestamp string `json:"timestamp"`
	WordCount int    `json:"wordcount"`
}

func pageResult(page searchPage) domain.RawResult {
	result := domain.RawResult{
		Title:       page.Title,
		Description: cleanSnippet(page.Snippet),
		URL:         articleURL(page.Title),
		Metadata: map[string]any{
			"pageid":    page.PageID,
			"wordcount": page.WordCount,
		},
	}
	if ts, err := time.Parse(time.RFC3339, page.Timestamp); err == nil {
		ms := ts.UnixMilli()
		result.Timestamp = &ms
	}
	return result
}

// titleEscaper escapes only the characters that would change how an
// article URL parses. MediaWiki keeps the rest of the title's punctuation
// raw, and other providers link articles in that canonical form, so
// matching it keeps the URLs mergeable across providers.
var titleEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// articleURL builds the canonical article URL from a page title.
func articleURL(title string) string {
	return articleBase + titleEscaper.Replace(strings.ReplaceAll(title, " ", "_"))
}

// cleanSnippet removes searchmatch markup and decodes HTML entities.
func cleanSnippet(snippet string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(snippet, ""))
}
