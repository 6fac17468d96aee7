// Package googlecse implements a search provider backed by Google
// Programmable Search (Custom Search Engine). It needs an API key and a
// search engine id; the free tier allows 100 queries per day.
package googlecse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

const (
	// defaultLimit matches the API's own page size.
	defaultLimit = 10

	// maxLimit is the num ceiling; Custom Search never returns more than
	// ten results per request.
	maxLimit = 10

	// queriesPerSecond throttles conservatively under the daily quota.
	queriesPerSecond = 1.0
)

// Ensure Provider implements the driven ports.
var (
	_ driven.Provider  = (*Provider)(nil)
	_ driven.Describer = (*Provider)(nil)
)

// Provider queries the Google Custom Search JSON API.
type Provider struct {
	apiKey string
	cseID  string

	initOnce sync.Once
	initErr  error
	svc      *customsearch.Service

	limiter *rate.Limiter
}

// New creates a Google Programmable Search provider. The API service is
// initialized lazily on first use.
func New(apiKey, cseID string) *Provider {
	return &Provider{
		apiKey:  apiKey,
		cseID:   cseID,
		limiter: rate.NewLimiter(rate.Limit(queriesPerSecond), 1),
	}
}

// ID returns the provider id.
func (p *Provider) ID() string { return "googlecse" }

// Name returns the display name.
func (p *Provider) Name() string { return "Google" }

// Description returns a short description for listings.
func (p *Provider) Description() string {
	return "Web search via Google Programmable Search (requires GOOGLE_API_KEY and GOOGLE_CSE_ID)"
}

// ensureService initializes the customsearch service if not already done.
func (p *Provider) ensureService(ctx context.Context) error {
	p.initOnce.Do(func() {
		if p.svc != nil {
			return
		}
		svc, err := customsearch.NewService(ctx, option.WithAPIKey(p.apiKey))
		if err != nil {
			p.initErr = fmt.Errorf("creating customsearch service: %w", err)
			return
		}
		p.svc = svc
	})
	return p.initErr
}

// Search runs a web search against the configured engine. Custom Search
// exposes neither scores nor dates, so results carry only text fields.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	if ctx.Err() != nil {
		return nil, nil
	}

	if err := p.ensureService(ctx); err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	call := p.svc.Cse.List().
		Q(query).
		Cx(p.cseID).
		Num(int64(clampLimit(limit))).
		Context(ctx)

	payload, err := call.Do()
	if err != nil {
		return nil, wrapError(err)
	}

	results := make([]domain.RawResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, itemResult(item))
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

func itemResult(item *customsearch.Result) domain.RawResult {
	result := domain.RawResult{
		Title:       item.Title,
		Description: item.Snippet,
		URL:         item.Link,
		Metadata:    map[string]any{},
	}
	if item.DisplayLink != "" {
		result.Metadata["displayLink"] = item.DisplayLink
	}
	if item.Mime != "" {
		result.Metadata["mime"] = item.Mime
	}
	return result
}

// wrapError converts googleapi errors to domain errors.
func wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: google search quota exhausted", domain.ErrRateLimited)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: google api key rejected", domain.ErrProviderUnavailable)
		default:
			return fmt.Errorf("google search: HTTP %d: %s", apiErr.Code, apiErr.Message)
		}
	}
	return fmt.Errorf("google search: %w", err)
}
