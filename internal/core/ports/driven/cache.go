package driven

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// ResultCache stores raw result lists keyed by (provider, query, limit)
// so repeat searches skip the provider call.
//
// Implementations are best-effort by contract: a read failure is a miss,
// a write failure is a no-op, and neither surfaces to the caller. Both
// operations gate on the context and degrade the same way when it is
// cancelled.
type ResultCache interface {
	// Get returns the cached raw results for key and whether a live
	// entry existed. Expired entries count as absent.
	Get(ctx context.Context, key string) ([]domain.RawResult, bool)

	// Set stores raw results under key and persists.
	Set(ctx context.Context, key string, results []domain.RawResult)
}
