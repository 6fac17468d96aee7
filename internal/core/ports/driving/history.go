package driving

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// HistoryService records and reports completed searches.
type HistoryService interface {
	// Record saves one completed search. Best-effort: failures are
	// logged, not returned, so recording never breaks a search flow.
	Record(ctx context.Context, rec domain.SearchRecord)

	// List returns records newest first, at most limit (zero means all).
	List(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Clear deletes all records and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}
