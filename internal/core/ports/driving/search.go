package driving

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// SearchService runs aggregated searches across every enabled provider.
//
// Neither search operation returns an error: provider failures, cache
// degradation, and cancellation all ride inside the snapshots as data,
// so the caller always receives a (possibly empty) snapshot. Cancelling
// the context both cancels outstanding provider work and tells the
// engine the stream is abandoned.
type SearchService interface {
	// Search runs the fan-out to completion and returns the final,
	// authoritative snapshot.
	Search(ctx context.Context, query string, opts domain.SearchOptions) domain.SearchSnapshot

	// SearchStream returns a finite, non-restartable snapshot sequence,
	// one snapshot per provider completion, closed once every enabled
	// provider has succeeded or failed. The channel closes immediately,
	// emitting nothing, when no providers are enabled.
	SearchStream(ctx context.Context, query string, opts domain.SearchOptions) <-chan domain.SearchSnapshot

	// Registry passthroughs, so a front-end can drive provider state
	// through the same service it searches with.

	// List returns all registrations ordered by id.
	List() []domain.ProviderInfo

	// Provider returns a registered provider's info by id.
	Provider(id string) (domain.ProviderInfo, error)

	// EnabledIDs returns the ids of every enabled provider, ascending.
	EnabledIDs() []string

	// SetEnabled sets one provider's enabled flag.
	SetEnabled(id string, enabled bool) error

	// Toggle flips one provider's enabled flag and returns the new state.
	Toggle(id string) (bool, error)
}
