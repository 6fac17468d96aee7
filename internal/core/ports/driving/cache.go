package driving

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// CacheService exposes cache maintenance to external actors. The search
// path itself never goes through this interface; it uses the driven
// ResultCache port.
type CacheService interface {
	// Stats summarizes the cache file.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Clear drops every entry and persists the empty table. Returns how
	// many entries were removed.
	Clear(ctx context.Context) (int, error)

	// Location returns the cache file path.
	Location() string

	// Watch blocks until ctx is cancelled, invoking onChange with fresh
	// stats whenever the cache file changes on disk.
	Watch(ctx context.Context, onChange func(domain.CacheStats)) error
}
