package driven

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// HistoryStore persists completed-search records.
type HistoryStore interface {
	// SaveSearch appends one record.
	SaveSearch(ctx context.Context, rec domain.SearchRecord) error

	// ListSearches returns records newest first, at most limit (zero
	// means all).
	ListSearches(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// ClearSearches deletes all records and returns how many were removed.
	ClearSearches(ctx context.Context) (int64, error)
}
