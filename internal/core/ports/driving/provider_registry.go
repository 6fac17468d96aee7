package driving

import "github.com/custodia-labs/metcha-cli/internal/core/domain"

// ProviderRegistry exposes provider state to external actors. The
// capability-typed operations (registering providers, fetching the
// search capability itself) stay on the core registry service; front
// ends only ever see info views and enabled flags.
type ProviderRegistry interface {
	// List returns all registrations ordered by id ascending.
	List() []domain.ProviderInfo

	// Info returns one registered provider's info.
	Info(id string) (domain.ProviderInfo, error)

	// IsEnabled reports one provider's enabled flag.
	IsEnabled(id string) (bool, error)

	// SetEnabled sets one provider's enabled flag.
	SetEnabled(id string, enabled bool) error

	// Toggle flips one provider's enabled flag and returns the new state.
	Toggle(id string) (bool, error)

	// SetEnabledIDs overwrites the whole enabled set: every registered
	// id's flag becomes its membership in ids. Unknown members are
	// ignored; they refer to nothing.
	SetEnabledIDs(ids []string)

	// EnabledIDs returns the ids of every enabled provider, ascending.
	EnabledIDs() []string
}
