package domain

// SearchOptions configures one aggregated search.
type SearchOptions struct {
	// Limit is the per-provider result count hint. Zero leaves the
	// choice to each provider.
	Limit int

	// Sort selects the snapshot ordering. The zero value sorts by
	// relevance.
	Sort SortPolicy

	// Providers restricts the fan-out to a subset of the enabled set.
	// Empty means every enabled provider.
	Providers []string

	// Refresh bypasses cache reads for this search. Results are still
	// written back.
	Refresh bool
}

// ProviderError records one provider's failure within a search. It is
// data, not a control-flow error: a failing provider never aborts its
// siblings.
type ProviderError struct {
	// ProviderID is the id of the failed provider.
	ProviderID string

	// ProviderName is the provider's display name.
	ProviderName string

	// Err is the failure. Cancellation is distinguishable with
	// errors.Is(Err, context.Canceled).
	Err error
}

// SearchSnapshot is one point-in-time view of a streaming search: the
// full result list merged so far, ordered by the active sort policy,
// plus every provider failure observed so far. Snapshots are emitted
// once per provider completion; the final one is authoritative.
type SearchSnapshot struct {
	// Results is the full aggregated result list, sorted.
	Results []AggregatedResult

	// Errors accumulates per-provider failures. A provider appears at
	// most once.
	Errors []ProviderError
}
