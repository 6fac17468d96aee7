// Package hackernews implements a search provider backed by the Algolia
// Hacker News search API. Story points map directly onto result scores,
// which makes this the main score contributor among the keyless providers.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

// searchBase is the Algolia HN search endpoint. Declared as a var so tests
// can substitute an httptest server.
var searchBase = "https://hn.algolia.com/api/v1/search"

const (
	// itemBase prefixes permalinks for stories without an external URL
	// (Ask HN, Show HN text posts).
	itemBase = "https://news.ycombinator.com/item?id="

	defaultLimit = 20
	maxLimit     = 100

	requestTimeout = 10 * time.Second

	userAgent = "metcha-cli"
)

// Ensure Provider implements the driven ports.
var (
	_ driven.Provider  = (*Provider)(nil)
	_ driven.Describer = (*Provider)(nil)
)

// Provider queries the Algolia Hacker News API.
type Provider struct {
	client *http.Client
}

// New creates a Hacker News provider. No credentials are required.
func New() *Provider {
	return &Provider{
		client: &http.Client{Timeout: requestTimeout},
	}
}

// ID returns the provider id.
func (p *Provider) ID() string { return "hackernews" }

// Name returns the display name.
func (p *Provider) Name() string { return "Hacker News" }

// Description returns a short description for listings.
func (p *Provider) Description() string {
	return "Story search on Hacker News via the Algolia search API"
}

// Search runs a relevance-ranked story search. Points become the score and
// the submission time becomes the timestamp.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	if ctx.Err() != nil {
		return nil, nil
	}

	params := url.Values{
		"query":       {query},
		"tags":        {"story"},
		"hitsPerPage": {strconv.Itoa(clampLimit(limit))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchBase+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hackernews request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: hackernews", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: hackernews returned HTTP %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing hackernews response: %w", err)
	}

	results := make([]domain.RawResult, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		results = append(results, hitResult(hit))
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

// searchResponse is the subset of the Algolia payload the provider reads.
type searchResponse struct {
	Hits []hit `json:"hits"`
}

type hit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
	StoryText   string `json:"story_text"`
}

func hitResult(h hit) domain.RawResult {
	resultURL := h.URL
	if resultURL == "" {
		// Text posts have no external link; fall back to the HN thread.
		resultURL = itemBase + h.ObjectID
	}

	score := float64(h.Points)
	result := domain.RawResult{
		Title:       h.Title,
		Description: h.StoryText,
		URL:         resultURL,
		Score:       &score,
		Metadata: map[string]any{
			"author":   h.Author,
			"comments": h.NumComments,
			"objectID": h.ObjectID,
		},
	}
	if h.CreatedAtI > 0 {
		ms := h.CreatedAtI * 1000
		result.Timestamp = &ms
	}
	return result
}
