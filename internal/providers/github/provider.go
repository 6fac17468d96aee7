// Package github implements a search provider backed by the GitHub
// repository search API.
//
// The provider authenticates with a personal access token. Both classic
// and fine-grained tokens work; searching public repositories needs no
// scopes at all. Stargazer counts map onto result scores and the last
// push time onto result timestamps.
//
// GitHub allows 30 search requests per minute for authenticated users, a
// far lower ceiling than the general 5,000/hour API quota. The provider
// throttles proactively below that rate and also tracks the quota
// reported in response headers, waiting for the reset once the remaining
// allowance runs out.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

const (
	// defaultTimeout is the HTTP request timeout.
	defaultTimeout = 30 * time.Second

	// defaultLimit matches the search API's own page size.
	defaultLimit = 30

	// maxLimit is the search API's per_page ceiling.
	maxLimit = 100
)

// Ensure Provider implements the driven ports.
var (
	_ driven.Provider  = (*Provider)(nil)
	_ driven.Describer = (*Provider)(nil)
)

// Provider queries the GitHub repository search API.
type Provider struct {
	gh      *gh.Client
	limiter *rateLimiter
}

// New creates a GitHub provider authenticated with a personal access token.
func New(token string) *Provider {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = defaultTimeout

	return &Provider{
		gh:      gh.NewClient(tc),
		limiter: newRateLimiter(),
	}
}

// ID returns the provider id.
func (p *Provider) ID() string { return "github" }

// Name returns the display name.
func (p *Provider) Name() string { return "GitHub" }

// Description returns a short description for listings.
func (p *Provider) Description() string {
	return "Repository search on GitHub, ranked by stars (requires GITHUB_TOKEN)"
}

// Search runs a best-match repository search. Stars become the score and
// the last push becomes the timestamp.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error) {
	if ctx.Err() != nil {
		return nil, nil
	}

	if err := p.limiter.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: clampLimit(limit)},
	}
	res, resp, err := p.gh.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, wrapError(err)
	}
	p.limiter.update(resp)

	results := make([]domain.RawResult, 0, len(res.Repositories))
	for _, repo := range res.Repositories {
		results = append(results, repoResult(repo))
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

func repoResult(repo *gh.Repository) domain.RawResult {
	score := float64(repo.GetStargazersCount())
	result := domain.RawResult{
		Title:       repo.GetFullName(),
		Description: repo.GetDescription(),
		URL:         repo.GetHTMLURL(),
		Score:       &score,
		Metadata: map[string]any{
			"owner": repo.GetOwner().GetLogin(),
			"stars": repo.GetStargazersCount(),
			"forks": repo.GetForksCount(),
		},
	}
	if lang := repo.GetLanguage(); lang != "" {
		result.Metadata["language"] = lang
	}
	if pushed := repo.GetPushedAt(); !pushed.IsZero() {
		ms := pushed.UnixMilli()
		result.Timestamp = &ms
	}
	return result
}

// wrapError converts go-github errors to domain errors.
func wrapError(err error) error {
	var rlErr *gh.RateLimitError
	if errors.As(err, &rlErr) {
		return fmt.Errorf("%w: github search quota resets at %s",
			domain.ErrRateLimited, rlErr.Rate.Reset.Format(time.RFC3339))
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: github secondary limit hit", domain.ErrRateLimited)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: github token rejected", domain.ErrProviderUnavailable)
		}
		return fmt.Errorf("github search: HTTP %d: %s", ghErr.Response.StatusCode, ghErr.Message)
	}

	return fmt.Errorf("github search: %w", err)
}
