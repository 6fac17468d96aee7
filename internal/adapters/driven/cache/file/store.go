package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driving"
	"github.com/custodia-labs/metcha-cli/internal/logger"
)

// Ensure Store implements both cache interfaces.
var _ driven.ResultCache = (*Store)(nil)
var _ driving.CacheService = (*Store)(nil)

// fileVersion is the cache document version this store reads and
// writes. Any other version on disk is treated as an empty cache.
const fileVersion = 1

// Store is a JSON-file-backed result cache. The file is read once per
// process on first access; every write replaces the whole file through
// a temp-file rename, serialized by the store mutex in-process and by a
// flock-based lock file across processes.
//
// Reads and writes are best-effort: failures are logged and degrade to
// a cache miss or a skipped persist, never an error on the search path.
type Store struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	flk     *flock.Flock
	loaded  bool
	entries map[string]entry

	// now is swapped in tests to pin expiry arithmetic.
	now func() time.Time
}

// cacheFile is the on-disk document.
type cacheFile struct {
	Version int              `json:"version"`
	Entries map[string]entry `json:"entries"`
}

// entry is one cached provider response. Timestamps are epoch
// milliseconds; ExpiresAt absent means the configured TTL applies.
type entry struct {
	Value     []domain.RawResult `json:"value"`
	CachedAt  int64              `json:"cachedAt"`
	ExpiresAt *int64             `json:"expiresAt,omitempty"`
}

// New creates a store over opts.Path. The file is not touched until the
// first read or write.
func New(opts Options) *Store {
	path := filepath.Clean(opts.Path)
	return &Store{
		path: path,
		ttl:  opts.TTL,
		flk:  flock.New(path + ".lock"),
		now:  time.Now,
	}
}

// Get returns the cached results for key. An expired entry is evicted,
// the eviction persisted, and the call reports a miss.
func (s *Store) Get(ctx context.Context, key string) ([]domain.RawResult, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.expired(e, s.now()) {
		logger.Debug("Evicting expired cache entry %s", key)
		delete(s.entries, key)
		if err := s.persistLocked(); err != nil {
			logger.Warn("Failed to persist cache eviction: %v", err)
		}
		return nil, false
	}
	return e.Value, true
}

// Set stores results under key and persists the full table. A persist
// failure is logged and the in-memory entry kept.
func (s *Store) Set(ctx context.Context, key string, results []domain.RawResult) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	now := s.now()
	e := entry{Value: results, CachedAt: now.UnixMilli()}
	if s.ttl > 0 {
		exp := now.Add(s.ttl).UnixMilli()
		e.ExpiresAt = &exp
	}
	s.entries[key] = e

	if err := s.persistLocked(); err != nil {
		logger.Warn("Failed to persist cache: %v", err)
	}
}

// Stats summarizes the cache file and the loaded entry table.
func (s *Store) Stats(ctx context.Context) (domain.CacheStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.CacheStats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	stats := domain.CacheStats{
		Entries: len(s.entries),
		Path:    s.path,
	}
	now := s.now()
	for _, e := range s.entries {
		if s.expired(e, now) {
			stats.Expired++
		}
	}

	if fi, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = fi.Size()
	} else if !os.IsNotExist(err) {
		return domain.CacheStats{}, fmt.Errorf("stat cache file: %w", err)
	}
	return stats, nil
}

// Clear drops every entry and persists the empty table.
func (s *Store) Clear(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	removed := len(s.entries)
	s.entries = make(map[string]entry)
	if err := s.persistLocked(); err != nil {
		return 0, fmt.Errorf("persist cleared cache: %w", err)
	}
	return removed, nil
}

// Location returns the cache file path.
func (s *Store) Location() string {
	return s.path
}

// Reload drops the in-memory table so the next access re-reads the
// file. Used when the file changes underneath the process.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

// loadLocked reads the cache file into memory exactly once per process.
// Missing files, parse failures, and unknown versions all start the
// cache empty. Caller must hold the lock.
func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.entries = make(map[string]entry)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read cache file %s: %v", s.path, err)
		}
		return
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("Failed to parse cache file %s, starting empty: %v", s.path, err)
		return
	}
	if f.Version != fileVersion {
		logger.Debug("Ignoring cache file %s with unknown version %d", s.path, f.Version)
		return
	}
	if f.Entries != nil {
		s.entries = f.Entries
	}
}

// persistLocked replaces the cache file with the current table. The
// write goes to a temp file in the same directory and is renamed into
// place, under the cross-process lock. Caller must hold the lock.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(cacheFile{Version: fileVersion, Entries: s.entries})
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer func() {
		if err := s.flk.Unlock(); err != nil {
			logger.Warn("Failed to release cache lock: %v", err)
		}
	}()

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// expired reports whether e is past its lifetime at now. An explicit
// expiresAt always wins; otherwise the configured TTL applies, and a
// disabled TTL means entries never age out.
func (s *Store) expired(e entry, now time.Time) bool {
	nowMS := now.UnixMilli()
	if e.ExpiresAt != nil {
		return nowMS >= *e.ExpiresAt
	}
	if s.ttl <= 0 {
		return false
	}
	return nowMS >= e.CachedAt+s.ttl.Milliseconds()
}
