// Package duckduckgo implements a search provider backed by the DuckDuckGo
// Instant Answer API. The API returns a topic abstract plus related links
// rather than a classic result page, so a single query yields at most a few
// dozen results and carries neither scores nor timestamps.
package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

// searchBase is the Instant Answer endpoint. Declared as a var so tests can
// substitute an httptest server.
var searchBase = "https://api.duckduckgo.com/"

const (
	// requestTimeout bounds a single API call.
	requestTimeout = 10 * time.Second

	userAgent = "metcha-cli"
)

// Ensure Provider implements the driven ports.
var (
	_ driven.Provider  = (*Provider)(nil)
	_ driven.Describer = (*Provider)(nil)
)

// Provider queries the DuckDuckGo Instant Answer API.
type Provider struct {
	client *http.Client
}

// New creates a DuckDuckGo provider. No credentials are required.
func New() *Provider {
	return &Provider{
		client: &http.Client{Timeout: requestTimeout},
	}
}

// ID returns the provider id.
func (p *Provider) ID() string { return "duckduckgo" }

// Name returns the display name.
func (p *Provider) Name() string { return "DuckDuckGo" }

// Description returns a short description for listings.
func (p *Provider) Description() string {
	return "Instant answers and related topics from the DuckDuckGo Instant Answer API"
}

// Search queries the Instant Answer API and maps the abstract, external
// results and related topics into raw results. An already-cancelled context
// returns empty rather than an error.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	if ctx.Err() != nil {
		return nil, nil
	}

	params := url.Values{
		"q":           {query},
		"format":      {"json"},
		"no_html":     {"1"},
		"no_redirect": {"1"},
	}
	reqURL := searchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: duckduckgo returned HTTP %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("parsing duckduckgo response: %w", err)
	}

	return mapAnswer(answer, limit), nil
}

// instantAnswer is the subset of the Instant Answer payload the provider
// reads. Field names follow the API's PascalCase convention.
type instantAnswer struct {
	Heading        string  `json:"Heading"`
	AbstractText   string  `json:"AbstractText"`
	AbstractURL    string  `json:"AbstractURL"`
	AbstractSource string  `json:"AbstractSource"`
	Results        []topic `json:"Results"`
	RelatedTopics  []topic `json:"RelatedTopics"`
}

// topic is a single link in Results or RelatedTopics. Category entries in
// RelatedTopics nest their links one level down under Topics.
type topic struct {
	FirstURL string  `json:"FirstURL"`
	Text     string  `json:"Text"`
	Topics   []topic `json:"Topics"`
}

// mapAnswer flattens an instant answer into raw results. The abstract comes
// first, then external results, then related topics. Duplicate URLs within
// one response are dropped so a provider never contributes the same URL
// twice to a merge.
func mapAnswer(answer instantAnswer, limit int) []domain.RawResult {
	var (
		results []domain.RawResult
		seen    = map[string]bool{}
	)

	add := func(r domain.RawResult) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		if r.URL == "" || seen[r.URL] {
			return true
		}
		seen[r.URL] = true
		results = append(results, r)
		return true
	}

	if answer.AbstractURL != "" {
		meta := map[string]any{"kind": "abstract"}
		if answer.AbstractSource != "" {
			meta["source"] = answer.AbstractSource
		}
		add(domain.RawResult{
			Title:       answer.Heading,
			Description: answer.AbstractText,
			URL:         answer.AbstractURL,
			Metadata:    meta,
		})
	}

	for _, t := range answer.Results {
		if !add(topicResult(t, "result")) {
			return results
		}
	}
	for _, t := range flattenTopics(answer.RelatedTopics) {
		if !add(topicResult(t, "related")) {
			return results
		}
	}

	return results
}

// flattenTopics expands category entries so every returned topic carries a
// FirstURL.
func flattenTopics(topics []topic) []topic {
	var flat []topic
	for _, t := range topics {
		if t.FirstURL != "" {
			flat = append(flat, t)
			continue
		}
		flat = append(flat, t.Topics...)
	}
	return flat
}

// topicResult maps a topic link to a raw result. Topic text reads
// "Title - description", so the first separator splits the two.
func topicResult(t topic, kind string) domain.RawResult {
	title, desc := t.Text, ""
	if before, after, found := strings.Cut(t.Text, " - "); found {
		title, desc = before, after
	}
	return domain.RawResult{
		Title:       title,
		Description: desc,
		URL:         t.FirstURL,
		Metadata:    map[string]any{"kind": kind},
	}
}
