package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.SearchRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// SaveSearch appends one record.
func (s *HistoryStore) SaveSearch(_ context.Context, rec domain.SearchRecord) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ListSearches returns records newest first, at most limit (zero means all).
func (s *HistoryStore) ListSearches(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SearchRecord, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutedAt.After(out[j].ExecutedAt)
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ClearSearches deletes all records and returns how many were removed.
func (s *HistoryStore) ClearSearches(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := int64(len(s.records))
	s.records = nil
	return removed, nil
}
