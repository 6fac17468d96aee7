package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driving"
	"github.com/custodia-labs/metcha-cli/internal/logger"
)

// Ensure HistoryService implements the driving interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService records completed searches. The store is optional; a
// nil store turns the whole service into a no-op so search flows never
// depend on history being configured.
type HistoryService struct {
	store driven.HistoryStore
	newID func() string
}

// NewHistoryService creates the history service. The store may be nil.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{
		store: store,
		newID: uuid.NewString,
	}
}

// Record saves one completed search. Failures are logged, never
// returned; recording must not break a search flow.
func (s *HistoryService) Record(ctx context.Context, rec domain.SearchRecord) {
	if s.store == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = time.Now()
	}
	if err := s.store.SaveSearch(ctx, rec); err != nil {
		logger.Warn("Failed to record search history: %v", err)
	}
}

// List returns records newest first, at most limit (zero means all).
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	recs, err := s.store.ListSearches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	return recs, nil
}

// Clear deletes all records and returns how many were removed.
func (s *HistoryService) Clear(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	removed, err := s.store.ClearSearches(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear search history: %w", err)
	}
	return removed, nil
}
