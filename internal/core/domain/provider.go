package domain

// ProviderInfo is the registry's view of one registered provider.
type ProviderInfo struct {
	// ID is the provider's unique, stable id.
	ID string `json:"id"`

	// Name is the provider's display name.
	Name string `json:"name"`

	// Description is optional human-readable detail.
	Description string `json:"description,omitempty"`

	// Enabled is the provider's current enabled flag.
	Enabled bool `json:"enabled"`
}
