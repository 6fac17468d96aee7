package driven

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// Provider is a pluggable source of raw search results. Implementations
// live in internal/providers and keep their HTTP specifics private; the
// engine treats each one as an opaque capability.
//
// Search passes the query text and a result-count hint (zero means the
// provider's own default). The context carries cancellation for the
// whole fan-out: a provider must treat an already-cancelled context as
// "return empty immediately" rather than as a failure, and should abort
// in-flight work when it fires.
type Provider interface {
	// ID returns the provider's unique, stable id.
	ID() string

	// Name returns the provider's display name.
	Name() string

	// Search returns raw results for the query.
	Search(ctx context.Context, query string, limit int) ([]domain.RawResult, error)
}

// Describer is an optional Provider capability supplying human-readable
// detail for listings.
type Describer interface {
	// Description returns a short description of the provider.
	Description() string
}

// DefaultDisabler is an optional Provider capability controlling the
// initial enabled flag at registration. Providers without it start
// enabled.
type DefaultDisabler interface {
	// EnabledByDefault reports whether the provider starts enabled.
	EnabledByDefault() bool
}
