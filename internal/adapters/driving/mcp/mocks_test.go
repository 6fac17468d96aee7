package mcp

import (
	"context"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	snapshot domain.SearchSnapshot
	infos    []domain.ProviderInfo
	enabled  []string

	lastQuery string
	lastOpts  domain.SearchOptions

	setEnabledID   string
	setEnabledFlag bool
	setEnabledErr  error

	toggleState bool
	toggleErr   error
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) domain.SearchSnapshot {
	m.lastQuery = query
	m.lastOpts = opts
	return m.snapshot
}

func (m *mockSearchService) SearchStream(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) <-chan domain.SearchSnapshot {
	m.lastQuery = query
	m.lastOpts = opts

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

func (m *mockSearchService) SetEnabled(id string, enabled bool) error {
	if m.setEnabledErr != nil {
		return m.setEnabledErr
	}
	m.setEnabledID = id
	m.setEnabledFlag = enabled
	return nil
}

func (m *mockSearchService) Toggle(_ string) (bool, error) {
	return m.toggleState, m.toggleErr
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
