package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driving"
	"github.com/custodia-labs/metcha-cli/internal/logger"
)

// Ensure Aggregator implements the driving interface.
var _ driving.SearchService = (*Aggregator)(nil)

// Aggregator fans a query out to every enabled provider concurrently,
// consults the result cache before each provider call, merges raw
// results by URL, and emits a re-sorted snapshot after every provider
// completion.
//
// One search means one goroutine per enabled provider feeding a single
// buffered completion channel, drained by one coordinating goroutine
// that owns the merge table outright. Completions fold in arrival
// order, which is what makes the stream as-completed rather than
// wait-for-all.
type Aggregator struct {
	registry *Registry
	cache    driven.ResultCache

	// newID stamps aggregated results. Swapped in tests.
	newID func() string
}

// NewAggregator creates the search service. The cache may be nil, in
// which case every lookup is a miss and write-backs are skipped.
func NewAggregator(registry *Registry, cache driven.ResultCache) *Aggregator {
	return &Aggregator{
		registry: registry,
		cache:    cache,
		newID:    uuid.NewString,
	}
}

// completion is one provider's terminal outcome within a search:
// raw results, or an error. Exactly one per scheduled provider.
type completion struct {
	providerID   string
	providerName string
	results      []domain.RawResult
	err          error
}

// Search runs the fan-out to completion and returns the final,
// authoritative snapshot.
func (a *Aggregator) Search(ctx context.Context, query string, opts domain.SearchOptions) domain.SearchSnapshot {
	final := domain.SearchSnapshot{
		Results: []domain.AggregatedResult{},
		Errors:  []domain.ProviderError{},
	}
	for snap := range a.SearchStream(ctx, query, opts) {
		final = snap
	}
	return final
}

// SearchStream returns a finite snapshot sequence, one per provider
// completion. The channel is buffered for the whole sequence, so the
// coordinating goroutine always terminates even when the consumer walks
// away; cancelling ctx is how a consumer both stops provider work and
// abandons the stream.
func (a *Aggregator) SearchStream(ctx context.Context, query string, opts domain.SearchOptions) <-chan domain.SearchSnapshot {
	providers := a.selectProviders(opts)

	// Every emission fits: one snapshot per completion, plus the final
	// one a cancellation can synthesize.
	snapshots := make(chan domain.SearchSnapshot, len(providers)+1)
	if len(providers) == 0 {
		close(snapshots)
		return snapshots
	}

	// The search's own cancellation controller. Derived from the
	// caller's signal and handed to every provider call and cache
	// operation; nothing downstream sees the caller's context directly.
	searchCtx, cancel := context.WithCancel(ctx)

	completions := make(chan completion, len(providers))

	logger.Section("Aggregated Search")
	logger.Info("Fanning out %q to %d providers (limit=%d, sort=%s)",
		query, len(providers), opts.Limit, opts.Sort)

	for _, p := range providers {
		go a.fetchOne(searchCtx, p, query, opts, completions)
	}

	go a.drain(searchCtx, cancel, providers, opts.Sort, completions, snapshots)

	return snapshots
}

// fetchOne resolves one provider: cache first, then the provider call,
// then a best-effort write-back. It always delivers exactly one
// completion and never blocks doing so (the channel holds one slot per
// provider).
func (a *Aggregator) fetchOne(
	ctx context.Context,
	p driven.Provider,
	query string,
	opts domain.SearchOptions,
	completions chan<- completion,
) {
	c := completion{providerID: p.ID(), providerName: p.Name()}

	// A search cancelled before this task starts skips the provider
	// call; the cancellation reason becomes the error record.
	if ctx.Err() != nil {
		c.err = cancellationError(ctx)
		completions <- c
		return
	}

	key := domain.CacheKey(c.providerID, query, opts.Limit)
	if !opts.Refresh && a.cache != nil {
		if cached, ok := a.cache.Get(ctx, key); ok {
			logger.Debug("Cache hit for %s", c.providerID)
			c.results = cached
			completions <- c
			return
		}
	}

	results, err := p.Search(ctx, query, opts.Limit)
	if err != nil {
		if ctx.Err() != nil {
			c.err = cancellationError(ctx)
		} else {
			c.err = err
		}
		completions <- c
		return
	}

	if a.cache != nil {
		a.cache.Set(ctx, key, results)
	}
	c.results = results
	completions <- c
}

// drain is the single writer over the merge table. It folds completions
// in arrival order, emitting a freshly sorted snapshot after each one,
// and closes the stream once every provider is accounted for.
//
// When the search context fires, providers still in flight get their
// error record immediately, carrying the cancellation reason, and one
// final snapshot goes out; whatever those providers resolve later is
// informational only.
func (a *Aggregator) drain(
	ctx context.Context,
	cancel context.CancelFunc,
	providers []driven.Provider,
	policy domain.SortPolicy,
	completions <-chan completion,
	snapshots chan<- domain.SearchSnapshot,
) {
	defer cancel()
	defer close(snapshots)

	merge := make(map[string][]domain.Contribution)
	urls := make([]string, 0)
	errs := make([]domain.ProviderError, 0)

	pending := make(map[string]string, len(providers))
	for _, p := range providers {
		pending[p.ID()] = p.Name()
	}

	apply := func(c completion) {
		delete(pending, c.providerID)
		if c.err != nil {
			logger.Debug("Provider %s failed: %v", c.providerID, c.err)
			errs = append(errs, domain.ProviderError{
				ProviderID:   c.providerID,
				ProviderName: c.providerName,
				Err:          c.err,
			})
			return
		}
		logger.Debug("Provider %s returned %d results", c.providerID, len(c.results))
		for _, raw := range c.results {
			if raw.URL == "" {
				logger.Debug("Dropping result from %s: no URL to merge on", c.providerID)
				continue
			}
			if _, seen := merge[raw.URL]; !seen {
				urls = append(urls, raw.URL)
			}
			merge[raw.URL] = append(merge[raw.URL], domain.Contribution{
				ProviderID:   c.providerID,
				ProviderName: c.providerName,
				Result:       raw,
			})
		}
	}

	for len(pending) > 0 {
		select {
		case c := <-completions:
			apply(c)
			snapshots <- a.buildSnapshot(merge, urls, errs, policy)

		case <-ctx.Done():
			// Completions that raced the cancellation still count as
			// completed; only truly in-flight providers get the
			// cancellation record.
			for len(pending) > 0 {
				select {
				case c := <-completions:
					apply(c)
					continue
				default:
				}
				break
			}
			for _, id := range sortedKeys(pending) {
				errs = append(errs, domain.ProviderError{
					ProviderID:   id,
					ProviderName: pending[id],
					Err:          cancellationError(ctx),
				})
			}
			snapshots <- a.buildSnapshot(merge, urls, errs, policy)
			return
		}
	}
}

// buildSnapshot rebuilds the full aggregated list from the merge table
// and sorts it. Every rebuild stamps fresh ids and a fresh receivedAt;
// the error slice is copied so emitted snapshots never alias the
// drain's accumulator.
func (a *Aggregator) buildSnapshot(
	merge map[string][]domain.Contribution,
	urls []string,
	errs []domain.ProviderError,
	policy domain.SortPolicy,
) domain.SearchSnapshot {
	now := time.Now()
	results := make([]domain.AggregatedResult, 0, len(urls))
	for _, url := range urls {
		results = append(results, domain.Combine(a.newID(), url, merge[url], now))
	}

	snapErrs := make([]domain.ProviderError, len(errs))
	copy(snapErrs, errs)

	return domain.SearchSnapshot{
		Results: domain.SortResults(results, policy),
		Errors:  snapErrs,
	}
}

// selectProviders resolves the fan-out set: every enabled provider,
// optionally restricted to the subset named in the options.
func (a *Aggregator) selectProviders(opts domain.SearchOptions) []driven.Provider {
	enabled := a.registry.EnabledProviders()
	if len(opts.Providers) == 0 {
		return enabled
	}

	want := make(map[string]struct{}, len(opts.Providers))
	for _, id := range opts.Providers {
		want[id] = struct{}{}
	}

	subset := make([]driven.Provider, 0, len(enabled))
	for _, p := range enabled {
		if _, ok := want[p.ID()]; ok {
			subset = append(subset, p)
		}
	}
	return subset
}

// cancellationError wraps the context's cancellation cause so error
// records carry the reason and errors.Is(err, context.Canceled) holds
// for plain cancellations.
func cancellationError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("search cancelled: %w", cause)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns all registrations ordered by id.
func (a *Aggregator) List() []domain.ProviderInfo {
	return a.registry.List()
}

// Provider returns a registered provider's info by id.
func (a *Aggregator) Provider(id string) (domain.ProviderInfo, error) {
	return a.registry.Info(id)
}

// EnabledIDs returns the ids of every enabled provider, ascending.
func (a *Aggregator) EnabledIDs() []string {
	return a.registry.EnabledIDs()
}

// SetEnabled sets one provider's enabled flag.
func (a *Aggregator) SetEnabled(id string, enabled bool) error {
	return a.registry.SetEnabled(id, enabled)
}

// Toggle flips one provider's enabled flag and returns the new state.
func (a *Aggregator) Toggle(id string) (bool, error) {
	return a.registry.Toggle(id)
}
