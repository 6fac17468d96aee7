package domain

import (
	"sort"
	"time"
)

// RawResult is a single unprocessed hit as returned by one provider.
// Raw results round-trip through the disk cache, so every field carries
// a JSON tag and optional fields are pointers that marshal to nothing
// when absent.
type RawResult struct {
	// Title is the human-readable result title.
	Title string `json:"title"`

	// Description is a short summary or snippet. May be empty.
	Description string `json:"description"`

	// URL identifies the result. It is the natural identity within one
	// search: raw results sharing a URL are merged across providers.
	URL string `json:"url"`

	// Score is the provider's own relevance score, if it supplies one.
	Score *float64 `json:"score,omitempty"`

	// Timestamp is the result's publication or modification time in
	// epoch milliseconds, if the provider supplies one.
	Timestamp *int64 `json:"timestamp,omitempty"`

	// Metadata carries provider-specific extras opaque to the engine.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Contribution attributes one raw result to the provider that produced it.
// The merge table accumulates contributions per URL.
type Contribution struct {
	// ProviderID is the id of the contributing provider.
	ProviderID string

	// ProviderName is the provider's display name.
	ProviderName string

	// Result is the contributed raw result.
	Result RawResult
}

// AggregatedResult merges every contribution sharing one URL across
// providers in a single search.
type AggregatedResult struct {
	// ID is generated per aggregated entry.
	ID string `json:"id"`

	// Title is the merged title.
	Title string `json:"title"`

	// Description is the merged description.
	Description string `json:"description"`

	// URL is the merge key shared by all contributions.
	URL string `json:"url"`

	// Score is the sum of every contributing score. Zero when no
	// contributor supplied one.
	Score float64 `json:"score"`

	// Timestamp is the merged epoch-millisecond timestamp, if any
	// contributor supplied one.
	Timestamp *int64 `json:"timestamp,omitempty"`

	// Metadata is the merged opaque metadata, if any contributor
	// supplied some.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Providers lists contributing provider ids, each exactly once, in
	// descending lexicographic order.
	Providers []string `json:"providers"`

	// ProviderNames lists display names parallel to Providers.
	ProviderNames []string `json:"providerNames"`

	// ReceivedAt is the wall-clock time of the snapshot build that
	// produced this entry.
	ReceivedAt time.Time `json:"receivedAt"`
}

// EffectiveTimestamp returns the explicit result timestamp when present,
// else ReceivedAt in epoch milliseconds. Comparators order by it.
func (r AggregatedResult) EffectiveTimestamp() int64 {
	if r.Timestamp != nil {
		return *r.Timestamp
	}
	return r.ReceivedAt.UnixMilli()
}

// Combine folds contributions for one URL into an AggregatedResult.
//
// The fold is an explicit, typed merge over the closed field set rather
// than a generic shallow-merge. Contributions are ordered by descending
// lexicographic provider id before folding (stable, so one provider's own
// duplicates keep their arrival order), which fixes the combination
// outcome regardless of completion order. Within the fold, Title and
// Description take the later contribution's value outright, Timestamp and
// Metadata take it only when the contribution carries one, and Score is
// the sum of every score supplied. Duplicate URLs within one provider all
// fold in; the provider id still appears once.
//
// Combine never mutates its input slice.
func Combine(id, url string, contribs []Contribution, receivedAt time.Time) AggregatedResult {
	ordered := make([]Contribution, len(contribs))
	copy(ordered, contribs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ProviderID > ordered[j].ProviderID
	})

	agg := AggregatedResult{
		ID:         id,
		URL:        url,
		ReceivedAt: receivedAt,
	}

	for _, c := range ordered {
		agg.Title = c.Result.Title
		agg.Description = c.Result.Description
		if c.Result.Timestamp != nil {
			ts := *c.Result.Timestamp
			agg.Timestamp = &ts
		}
		if c.Result.Metadata != nil {
			agg.Metadata = c.Result.Metadata
		}
		if c.Result.Score != nil {
			agg.Score += *c.Result.Score
		}

		n := len(agg.Providers)
		if n == 0 || agg.Providers[n-1] != c.ProviderID {
			agg.Providers = append(agg.Providers, c.ProviderID)
			agg.ProviderNames = append(agg.ProviderNames, c.ProviderName)
		}
	}

	return agg
}
