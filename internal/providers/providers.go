// Package providers assembles the built-in search providers. Each
// subpackage implements the driven.Provider port for one upstream search
// API and keeps its HTTP specifics private; the engine treats every
// provider as an opaque capability.
//
// Keyless providers are always available. Token-gated providers join only
// when their credentials are present in the environment.
package providers

import (
	"os"

	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/providers/duckduckgo"
	"github.com/custodia-labs/metcha-cli/internal/providers/github"
	"github.com/custodia-labs/metcha-cli/internal/providers/googlecse"
	"github.com/custodia-labs/metcha-cli/internal/providers/hackernews"
	"github.com/custodia-labs/metcha-cli/internal/providers/notion"
	"github.com/custodia-labs/metcha-cli/internal/providers/wikipedia"
)

// Environment variables gating the token-based providers.
const (
	// EnvGitHubToken enables the GitHub provider.
	EnvGitHubToken = "GITHUB_TOKEN"

	// EnvGoogleAPIKey and EnvGoogleCSEID together enable the Google
	// provider; Programmable Search needs both.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvGoogleCSEID  = "GOOGLE_CSE_ID"

	// EnvNotionToken enables the Notion provider.
	EnvNotionToken = "NOTION_TOKEN"
)

// Keyless returns the providers that need no credentials.
func Keyless() []driven.Provider {
	return []driven.Provider{
		duckduckgo.New(),
		wikipedia.New(),
		hackernews.New(),
	}
}

// FromEnv returns the keyless providers plus every token-gated provider
// whose credentials are present in the environment.
func FromEnv() []driven.Provider {
	list := Keyless()

	if token := os.Getenv(EnvGitHubToken); token != "" {
		list = append(list, github.New(token))
	}
	if key, cse := os.Getenv(EnvGoogleAPIKey), os.Getenv(EnvGoogleCSEID); key != "" && cse != "" {
		list = append(list, googlecse.New(key, cse))
	}
	if token := os.Getenv(EnvNotionToken); token != "" {
		list = append(list, notion.New(token))
	}

	return list
}
