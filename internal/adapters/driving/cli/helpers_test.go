package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/metcha-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	snapshot domain.SearchSnapshot
	infos    []domain.ProviderInfo
	enabled  []string

	lastQuery string
	lastOpts  domain.SearchOptions
	searches  int
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) domain.SearchSnapshot {
	m.lastQuery = query
	m.lastOpts = opts
	m.searches++
	return m.snapshot
}

func (m *mockSearchService) SearchStream(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) <-chan domain.SearchSnapshot {
	m.lastQuery = query
	m.lastOpts = opts
	m.searches++

	ch := make(chan domain.SearchSnapshot, 1)
	ch <- m.snapshot
	close(ch)
	return ch
}

func (m *mockSearchService) List() []domain.ProviderInfo {
	return m.infos
}

func (m *mockSearchService) Provider(id string) (domain.ProviderInfo, error) {
	for _, info := range m.infos {
		if info.ID == id {
			return info, nil
		}
	}
	return domain.ProviderInfo{}, domain.ErrProviderNotFound
}

func (m *mockSearchService) EnabledIDs() []string {
	return m.enabled
}

func (m *mockSearchService) SetEnabled(_ string, _ bool) error {
	return nil
}

func (m *mockSearchService) Toggle(_ string) (bool, error) {
	return false, nil
}

// mockRegistry is a mock implementation of driving.ProviderRegistry.
type mockRegistry struct {
	infos   []domain.ProviderInfo
	enabled map[string]bool

	setEnabledErr error
	toggleErr     error
	onlyIDs       []string
}

func (m *mockRegistry) List() []domain.ProviderInfo {
	return m.infos
}

func (m *mockRegistry) Info(id string) (domain.ProviderInfo, error) {
	for _, info := range m.infos {
		if info.ID == id {
			return info, nil
		}
	}
	return domain.ProviderInfo{}, domain.ErrProviderNotFound
}

func (m *mockRegistry) IsEnabled(id string) (bool, error) {
	if enabled, ok := m.enabled[id]; ok {
		return enabled, nil
	}
	return false, domain.ErrProviderNotFound
}

func (m *mockRegistry) SetEnabled(id string, enabled bool) error {
	if m.setEnabledErr != nil {
		return m.setEnabledErr
	}
	if m.enabled == nil {
		m.enabled = make(map[string]bool)
	}
	m.enabled[id] = enabled
	return nil
}

func (m *mockRegistry) Toggle(id string) (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	if m.enabled == nil {
		m.enabled = make(map[string]bool)
	}
	m.enabled[id] = !m.enabled[id]
	return m.enabled[id], nil
}

func (m *mockRegistry) SetEnabledIDs(ids []string) {
	m.onlyIDs = ids
}

func (m *mockRegistry) EnabledIDs() []string {
	ids := make([]string, 0, len(m.enabled))
	for id, enabled := range m.enabled {
		if enabled {
			ids = append(ids, id)
		}
	}
	return ids
}

// mockCacheService is a mock implementation of driving.CacheService.
type mockCacheService struct {
	stats   domain.CacheStats
	cleared int
	path    string
	err     error
}

func (m *mockCacheService) Stats(_ context.Context) (domain.CacheStats, error) {
	return m.stats, m.err
}

func (m *mockCacheService) Clear(_ context.Context) (int, error) {
	return m.cleared, m.err
}

func (m *mockCacheService) Location() string {
	return m.path
}

func (m *mockCacheService) Watch(ctx context.Context, _ func(domain.CacheStats)) error {
	<-ctx.Done()
	return nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	recorded []domain.SearchRecord
	records  []domain.SearchRecord
	cleared  int64
	err      error
}

func (m *mockHistoryService) Record(_ context.Context, rec domain.SearchRecord) {
	m.recorded = append(m.recorded, rec)
}

func (m *mockHistoryService) List(_ context.Context, _ int) ([]domain.SearchRecord, error) {
	return m.records, m.err
}

func (m *mockHistoryService) Clear(_ context.Context) (int64, error) {
	return m.cleared, m.err
}

// --- Test helpers ---

// testServices holds the mocks installed by setupTestServices so tests
// can assert on their recorded state.
type testServices struct {
	search   *mockSearchService
	registry *mockRegistry
	cache    *mockCacheService
	history  *mockHistoryService
	config   *memory.ConfigStore
}

// setupTestServices swaps every injected service for a mock and restores
// the originals on cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	mocks := &testServices{
		search: &mockSearchService{
			snapshot: domain.SearchSnapshot{
				Results: []domain.AggregatedResult{{
					ID:            "agg-1",
					Title:         "Example Result",
					Description:   "An example aggregated result",
					URL:           "https://example.com",
					Score:         8,
					Providers:     []string{"beta", "alpha"},
					ProviderNames: []string{"Beta", "Alpha"},
				}},
				Errors: []domain.ProviderError{},
			},
			infos: []domain.ProviderInfo{
				{ID: "alpha", Name: "Alpha", Enabled: true},
				{ID: "beta", Name: "Beta", Enabled: true},
			},
			enabled: []string{"alpha", "beta"},
		},
		registry: &mockRegistry{
			infos: []domain.ProviderInfo{
				{ID: "alpha", Name: "Alpha", Description: "First provider", Enabled: true},
				{ID: "beta", Name: "Beta", Enabled: false},
			},
			enabled: map[string]bool{"alpha": true, "beta": false},
		},
		cache: &mockCacheService{
			stats: domain.CacheStats{Entries: 3, Expired: 1, SizeBytes: 512, Path: "/tmp/cache.json"},
			path:  "/tmp/cache.json",
		},
		history: &mockHistoryService{},
		config:  memory.NewConfigStore(),
	}

	prevSearch := searchService
	prevRegistry := providerRegistry
	prevCache := cacheService
	prevHistory := historyService
	prevConfig := configStore

	searchService = mocks.search
	providerRegistry = mocks.registry
	cacheService = mocks.cache
	historyService = mocks.history
	configStore = mocks.config

	t.Cleanup(resetSearchFlags)
	t.Cleanup(func() {
		searchService = prevSearch
		providerRegistry = prevRegistry
		cacheService = prevCache
		historyService = prevHistory
		configStore = prevConfig
	})

	return mocks
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
