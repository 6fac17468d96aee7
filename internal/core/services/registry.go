package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driving"
)

// Ensure Registry implements the driving interface.
var _ driving.ProviderRegistry = (*Registry)(nil)

// Registry holds the known providers and each one's enabled flag.
// Providers are registered once at startup and are immutable afterwards
// except for that flag.
//
// The guard exists because MCP tool handlers can race the CLI control
// flow; an in-flight search only ever reads a point-in-time view taken
// at fan-out.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]driven.Provider
	enabled   map[string]bool
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]driven.Provider),
		enabled:   make(map[string]bool),
	}
}

// Register adds a provider under its id. The initial enabled flag comes
// from the provider's EnabledByDefault capability; providers without one
// start enabled.
func (r *Registry) Register(p driven.Provider) error {
	id := p.ID()
	if id == "" {
		return fmt.Errorf("%w: empty provider id", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, id)
	}

	enabled := true
	if d, ok := p.(driven.DefaultDisabler); ok {
		enabled = d.EnabledByDefault()
	}

	r.providers[id] = p
	r.enabled[id] = enabled
	return nil
}

// List returns all registrations ordered by id ascending.
func (r *Registry) List() []domain.ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.ProviderInfo, 0, len(r.providers))
	for id, p := range r.providers {
		infos = append(infos, r.infoLocked(id, p))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Info returns one registered provider's info.
func (r *Registry) Info(id string) (domain.ProviderInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return domain.ProviderInfo{}, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	return r.infoLocked(id, p), nil
}

// Get returns the registered provider capability by id. Core-side only;
// front ends go through Info.
func (r *Registry) Get(id string) (driven.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	return p, nil
}

// IsEnabled reports one provider's enabled flag.
func (r *Registry) IsEnabled(id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.providers[id]; !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	return r.enabled[id], nil
}

// SetEnabled sets one provider's enabled flag.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	r.enabled[id] = enabled
	return nil
}

// Toggle flips one provider's enabled flag and returns the new state.
func (r *Registry) Toggle(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id], nil
}

// SetEnabledIDs overwrites the whole enabled set: every registered id's
// flag becomes its membership in ids. Ids that name nothing registered
// are ignored.
func (r *Registry) SetEnabledIDs(ids []string) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.providers {
		_, member := want[id]
		r.enabled[id] = member
	}
}

// EnabledIDs returns the ids of every enabled provider, ascending.
func (r *Registry) EnabledIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		if r.enabled[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// EnabledProviders returns every enabled provider, ascending by id. The
// aggregator fans out over exactly this view.
func (r *Registry) EnabledProviders() []driven.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		if r.enabled[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	providers := make([]driven.Provider, 0, len(ids))
	for _, id := range ids {
		providers = append(providers, r.providers[id])
	}
	return providers
}

func (r *Registry) infoLocked(id string, p driven.Provider) domain.ProviderInfo {
	info := domain.ProviderInfo{
		ID:      id,
		Name:    p.Name(),
		Enabled: r.enabled[id],
	}
	if d, ok := p.(driven.Describer); ok {
		info.Description = d.Description()
	}
	return info
}
