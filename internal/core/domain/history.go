package domain

import "time"

// SearchRecord is one completed search as kept in the history store.
type SearchRecord struct {
	// ID is generated per record.
	ID string

	// Query is the query text as issued.
	Query string

	// Sort is the sort policy the search ran with.
	Sort SortPolicy

	// Limit is the per-provider result hint, zero when unset.
	Limit int

	// ProviderCount is how many providers the search fanned out to.
	ProviderCount int

	// ResultCount is the size of the final snapshot's result list.
	ResultCount int

	// ErrorCount is the size of the final snapshot's error list.
	ErrorCount int

	// Duration is how long the search ran.
	Duration time.Duration

	// ExecutedAt is when the search started.
	ExecutedAt time.Time
}
