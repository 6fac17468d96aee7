package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"limit", "sort", "provider", "refresh", "json"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestSearchCmd_PrintsFinalSnapshot(t *testing.T) {
	mocks := setupTestServices(t)

	out, err := execute(t, "search", "test query")

	require.NoError(t, err)
	assert.Equal(t, "test query", mocks.search.lastQuery)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "Example Result")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "Beta, Alpha")
}

func TestSearchCmd_PassesOptions(t *testing.T) {
	mocks := setupTestServices(t)

	_, err := execute(t, "search", "-n", "5", "--sort", "recency",
		"--provider", "alpha", "--refresh", "query")
	defer resetSearchFlags()

	require.NoError(t, err)
	assert.Equal(t, domain.SearchOptions{
		Limit:     5,
		Sort:      domain.SortRecency,
		Providers: []string{"alpha"},
		Refresh:   true,
	}, mocks.search.lastOpts)
}

func TestSearchCmd_RejectsUnknownSort(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search", "--sort", "sideways", "query")
	defer resetSearchFlags()

	assert.ErrorIs(t, err, domain.ErrUnknownSortPolicy)
}

func TestSearchCmd_NoProvidersEnabled(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.search.enabled = nil

	_, err := execute(t, "search", "query")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no providers enabled")
}

func TestSearchCmd_ProviderRestrictionOutsideEnabledSet(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search", "--provider", "gamma", "query")
	defer resetSearchFlags()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no providers enabled")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "search", "--json", "query")
	defer resetSearchFlags()

	require.NoError(t, err)
	assert.Contains(t, out, `"results"`)
	assert.Contains(t, out, `"errors"`)
	assert.Contains(t, out, `"https://example.com"`)
}

func TestSearchCmd_ProviderFailuresAreWarnings(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.search.snapshot.Errors = []domain.ProviderError{
		{ProviderID: "beta", ProviderName: "Beta", Err: assert.AnError},
	}

	out, err := execute(t, "search", "query")

	require.NoError(t, err, "provider failure must not fail the command")
	assert.Contains(t, out, "Warning: Beta failed")
}

func TestSearchCmd_RecordsHistory(t *testing.T) {
	mocks := setupTestServices(t)

	_, err := execute(t, "search", "remember me")

	require.NoError(t, err)
	require.Len(t, mocks.history.recorded, 1)
	rec := mocks.history.recorded[0]
	assert.Equal(t, "remember me", rec.Query)
	assert.Equal(t, 2, rec.ProviderCount)
	assert.Equal(t, 1, rec.ResultCount)
	assert.Equal(t, 0, rec.ErrorCount)
	assert.False(t, rec.ExecutedAt.IsZero())
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	prev := searchService
	searchService = nil
	defer func() { searchService = prev }()

	_, err := execute(t, "search", "query")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCmd_EmptySnapshot(t *testing.T) {
	mocks := setupTestServices(t)
	mocks.search.snapshot = domain.SearchSnapshot{}

	out, err := execute(t, "search", "query")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

// resetSearchFlags clears the sticky package-level flag values between
// tests that set them.
func resetSearchFlags() {
	searchLimit = 0
	searchSort = ""
	searchProviders = nil
	searchRefresh = false
	searchJSON = false
}
