package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/metcha-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed storage for local metcha data. Store
// interfaces are exposed through wrapper types sharing one connection.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.metcha/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".metcha", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// SaveSearch appends one completed-search record.
func (s *historyStore) SaveSearch(ctx context.Context, rec domain.SearchRecord) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO searches
			(id, query, sort, result_limit, provider_count, result_count, error_count, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Query, string(rec.Sort), rec.Limit, rec.ProviderCount,
		rec.ResultCount, rec.ErrorCount, rec.Duration.Milliseconds(), rec.ExecutedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving search record: %w", err)
	}
	return nil
}

// ListSearches returns records newest first, at most limit (zero means all).
func (s *historyStore) ListSearches(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	q := `
		SELECT id, query, sort, result_limit, provider_count, result_count, error_count, duration_ms, executed_at
		FROM searches
		ORDER BY executed_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var records []domain.SearchRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.SearchRecord
		var sortPolicy string
		var durationMS int64
		var executedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Query, &sortPolicy, &rec.Limit, &rec.ProviderCount,
			&rec.ResultCount, &rec.ErrorCount, &durationMS, &executedAt); err != nil {
			return nil, fmt.Errorf("scanning search record: %w", err)
		}

		rec.Sort = domain.SortPolicy(sortPolicy)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if executedAt.Valid {
			rec.ExecutedAt = executedAt.Time
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search records: %w", err)
	}

	return records, nil
}

// ClearSearches deletes all records and returns how many were removed.
func (s *historyStore) ClearSearches(ctx context.Context) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM searches")
	if err != nil {
		return 0, fmt.Errorf("clearing searches: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared searches: %w", err)
	}
	return removed, nil
}
