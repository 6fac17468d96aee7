package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metcha-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/metcha-cli/internal/core/domain"
)

// --- Test helpers ---

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	return New(Options{
		Path: filepath.Join(t.TempDir(), "cache.json"),
		TTL:  ttl,
	})
}

// sampleResults uses only JSON-stable metadata value types so entries
// compare deep-equal after a disk round-trip.
func sampleResults() []domain.RawResult {
	score := 4.2
	ts := int64(1700000000000)
	return []domain.RawResult{
		{
			Title:       "Go concurrency patterns",
			Description: "Pipelines and cancellation",
			URL:         "https://example.com/pipelines",
			Score:       &score,
			Timestamp:   &ts,
			Metadata:    map[string]any{"lang": "go", "stars": float64(1200)},
		},
		{
			Title: "Scoreless result",
			URL:   "https://example.com/plain",
		},
	}
}

func readRawDocument(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

// --- Tests ---

func TestStore_SetGet_RoundTrip(t *testing.T) {
	store := newTestStore(t, DefaultTTL)
	want := sampleResults()

	store.Set(context.Background(), "alpha::go::", want)
	got, ok := store.Get(context.Background(), "alpha::go::")

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStore_Get_MissingKey(t *testing.T) {
	store := newTestStore(t, DefaultTTL)

	got, ok := store.Get(context.Background(), "never::set::")

	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_Persistence_AcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	want := sampleResults()

	first := New(Options{Path: path, TTL: DefaultTTL})
	first.Set(context.Background(), "alpha::go::5", want)

	second := New(Options{Path: path, TTL: DefaultTTL})
	got, ok := second.Get(context.Background(), "alpha::go::5")

	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStore_FileFormat(t *testing.T) {
	store := newTestStore(t, DefaultTTL)

	store.Set(context.Background(), "alpha::go::", sampleResults())

	doc := readRawDocument(t, store.Location())
	assert.Equal(t, float64(1), doc["version"])

	entries, ok := doc["entries"].(map[string]any)
	require.True(t, ok)
	raw, ok := entries["alpha::go::"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, raw, "value")
	assert.Contains(t, raw, "cachedAt")
	assert.Contains(t, raw, "expiresAt")
}

func TestStore_TTLBoundary(t *testing.T) {
	ttl := 100 * time.Millisecond
	store := newTestStore(t, ttl)
	base := time.Now()

	store.now = func() time.Time { return base }
	store.Set(context.Background(), "k", sampleResults())

	store.now = func() time.Time { return base.Add(ttl - time.Millisecond) }
	_, ok := store.Get(context.Background(), "k")
	assert.True(t, ok, "entry must survive until the TTL elapses")

	store.now = func() time.Time { return base.Add(ttl) }
	_, ok = store.Get(context.Background(), "k")
	assert.False(t, ok, "entry must be absent from the TTL boundary onward")
}

func TestStore_ExpiredEntry_EvictionPersisted(t *testing.T) {
	ttl := 100 * time.Millisecond
	store := newTestStore(t, ttl)
	base := time.Now()

	store.now = func() time.Time { return base }
	store.Set(context.Background(), "stale", sampleResults())
	store.Set(context.Background(), "fresh", sampleResults())

	// Let only "stale" age out by rewriting "fresh" later.
	store.now = func() time.Time { return base.Add(ttl / 2) }
	store.Set(context.Background(), "fresh", sampleResults())

	store.now = func() time.Time { return base.Add(ttl) }
	_, ok := store.Get(context.Background(), "stale")
	require.False(t, ok)

	// The eviction must be visible to a fresh load of the file.
	reloaded := New(Options{Path: store.Location(), TTL: ttl})
	reloaded.now = store.now
	_, ok = reloaded.Get(context.Background(), "stale")
	assert.False(t, ok)
	_, ok = reloaded.Get(context.Background(), "fresh")
	assert.True(t, ok)
}

func TestStore_ZeroTTL_DisablesExpiry(t *testing.T) {
	store := newTestStore(t, 0)
	base := time.Now()

	store.now = func() time.Time { return base }
	store.Set(context.Background(), "k", sampleResults())

	store.now = func() time.Time { return base.AddDate(10, 0, 0) }
	_, ok := store.Get(context.Background(), "k")
	assert.True(t, ok)

	doc := readRawDocument(t, store.Location())
	entries := doc["entries"].(map[string]any)
	raw := entries["k"].(map[string]any)
	assert.NotContains(t, raw, "expiresAt", "disabled TTL must not stamp an expiry")
}

func TestStore_ExplicitExpiresAt_WinsOverTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	base := time.Now()
	baseMS := base.UnixMilli()

	// "dead" is freshly cached but explicitly expired; "alive" is far
	// older than the TTL but has an explicit future expiry.
	doc := fmt.Sprintf(`{
		"version": 1,
		"entries": {
			"dead":  {"value": [{"title": "d", "url": "https://d"}], "cachedAt": %d, "expiresAt": %d},
			"alive": {"value": [{"title": "a", "url": "https://a"}], "cachedAt": %d, "expiresAt": %d}
		}
	}`, baseMS, baseMS-1000, base.AddDate(0, -1, 0).UnixMilli(), baseMS+60_000)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	store := New(Options{Path: path, TTL: DefaultTTL})
	store.now = func() time.Time { return base }

	_, ok := store.Get(context.Background(), "dead")
	assert.False(t, ok)
	_, ok = store.Get(context.Background(), "alive")
	assert.True(t, ok)
}

func TestStore_UnknownVersion_TreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	doc := `{"version": 99, "entries": {"k": {"value": [], "cachedAt": 1}}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	store := New(Options{Path: path, TTL: DefaultTTL})

	_, ok := store.Get(context.Background(), "k")
	assert.False(t, ok)

	// Writing resets the file to the known version.
	store.Set(context.Background(), "k2", sampleResults())
	reread := readRawDocument(t, path)
	assert.Equal(t, float64(1), reread["version"])
}

func TestStore_CorruptFile_TreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("not json {{{"), 0600))

	store := New(Options{Path: path, TTL: DefaultTTL})

	_, ok := store.Get(context.Background(), "anything")
	assert.False(t, ok)
}

func TestStore_EmptyFile_TreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte{}, 0600))

	store := New(Options{Path: path, TTL: DefaultTTL})

	_, ok := store.Get(context.Background(), "anything")
	assert.False(t, ok)
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t, DefaultTTL)
	store.Set(context.Background(), "k1", sampleResults())
	store.Set(context.Background(), "k2", sampleResults())

	removed, err := store.Clear(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := store.Get(context.Background(), "k1")
	assert.False(t, ok)

	doc := readRawDocument(t, store.Location())
	assert.Empty(t, doc["entries"])
}

func TestStore_Stats(t *testing.T) {
	ttl := 100 * time.Millisecond
	store := newTestStore(t, ttl)
	base := time.Now()

	store.now = func() time.Time { return base }
	store.Set(context.Background(), "stale", sampleResults())

	store.now = func() time.Time { return base.Add(ttl / 2) }
	store.Set(context.Background(), "fresh", sampleResults())

	store.now = func() time.Time { return base.Add(ttl) }
	stats, err := store.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Expired)
	assert.Positive(t, stats.SizeBytes)
	assert.Equal(t, store.Location(), stats.Path)
}

func TestStore_Stats_NoFileYet(t *testing.T) {
	store := newTestStore(t, DefaultTTL)

	stats, err := store.Stats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
	assert.Zero(t, stats.SizeBytes)
}

func TestStore_CancelledContext_Degrades(t *testing.T) {
	store := newTestStore(t, DefaultTTL)
	store.Set(context.Background(), "k", sampleResults())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store.Set(ctx, "k2", sampleResults())
	_, ok := store.Get(ctx, "k")
	assert.False(t, ok, "a cancelled read degrades to a miss")

	_, ok = store.Get(context.Background(), "k2")
	assert.False(t, ok, "a cancelled write must not store anything")

	_, err := store.Stats(ctx)
	assert.Error(t, err)
	_, err = store.Clear(ctx)
	assert.Error(t, err)
}

func TestStore_LoadsOncePerProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	reader := New(Options{Path: path, TTL: DefaultTTL})

	// First access loads the (absent) file and pins the table.
	_, ok := reader.Get(context.Background(), "k")
	require.False(t, ok)

	writer := New(Options{Path: path, TTL: DefaultTTL})
	writer.Set(context.Background(), "k", sampleResults())

	_, ok = reader.Get(context.Background(), "k")
	assert.False(t, ok, "the table is read once, not per call")

	reader.Reload()
	_, ok = reader.Get(context.Background(), "k")
	assert.True(t, ok, "an explicit reload picks up external writes")
}

func TestStore_ConcurrentSetGet(t *testing.T) {
	store := newTestStore(t, DefaultTTL)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := fmt.Sprintf("key-%d", id)
			store.Set(context.Background(), key, sampleResults())
			_, _ = store.Get(context.Background(), key)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Entries)
}

func TestStore_Watch_ReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	watched := New(Options{Path: path, TTL: DefaultTTL})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.CacheStats, 8)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watched.Watch(ctx, func(stats domain.CacheStats) {
			changes <- stats
		})
	}()

	// Give the watcher a beat to register before writing.
	time.Sleep(100 * time.Millisecond)

	writer := New(Options{Path: path, TTL: DefaultTTL})
	writer.Set(context.Background(), "k", sampleResults())

	select {
	case stats := <-changes:
		assert.Equal(t, 1, stats.Entries)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after external write")
	}

	cancel()
	select {
	case err := <-watchDone:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancellation")
	}
}

func TestOptionsFromEnv_FileOverrideWins(t *testing.T) {
	t.Setenv(EnvCacheFile, "/tmp/custom-cache.json")
	t.Setenv(EnvCacheDir, "/tmp/ignored-dir")

	opts := OptionsFromEnv()

	assert.Equal(t, "/tmp/custom-cache.json", opts.Path)
	assert.Equal(t, DefaultTTL, opts.TTL)
}

func TestOptionsFromEnv_DirOverride(t *testing.T) {
	t.Setenv(EnvCacheFile, "")
	t.Setenv(EnvCacheDir, "/tmp/metcha-cache")

	opts := OptionsFromEnv()

	assert.Equal(t, filepath.Join("/tmp/metcha-cache", "cache.json"), opts.Path)
}

func TestOptionsFromEnv_TTLOverride(t *testing.T) {
	t.Setenv(EnvCacheTTL, "1500")

	opts := OptionsFromEnv()

	assert.Equal(t, 1500*time.Millisecond, opts.TTL)
}

func TestOptionsFromEnv_ZeroTTLDisablesExpiry(t *testing.T) {
	t.Setenv(EnvCacheTTL, "0")

	opts := OptionsFromEnv()

	assert.Equal(t, time.Duration(0), opts.TTL)
}

func TestOptionsFromEnv_InvalidTTLIgnored(t *testing.T) {
	t.Setenv(EnvCacheTTL, "soon")

	opts := OptionsFromEnv()

	assert.Equal(t, DefaultTTL, opts.TTL)
}

func TestOptionsFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvCacheFile, "")
	t.Setenv(EnvCacheDir, "")
	t.Setenv(EnvCacheTTL, "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	opts := OptionsFromEnv()

	assert.Equal(t, filepath.Join(home, ".metcha", "cache.json"), opts.Path)
	assert.Equal(t, DefaultTTL, opts.TTL)
}

func TestResolveOptions_ConfigBeatsDefaults(t *testing.T) {
	t.Setenv(EnvCacheFile, "")
	t.Setenv(EnvCacheDir, "")
	t.Setenv(EnvCacheTTL, "")

	cfg := memory.NewConfigStore()
	require.NoError(t, cfg.Set("cache.file", "/tmp/from-config.json"))
	require.NoError(t, cfg.Set("cache.ttl_ms", 5000))

	opts := ResolveOptions(cfg)

	assert.Equal(t, "/tmp/from-config.json", opts.Path)
	assert.Equal(t, 5*time.Second, opts.TTL)
}

func TestResolveOptions_EnvBeatsConfig(t *testing.T) {
	t.Setenv(EnvCacheFile, "/tmp/from-env.json")
	t.Setenv(EnvCacheTTL, "250")

	cfg := memory.NewConfigStore()
	require.NoError(t, cfg.Set("cache.file", "/tmp/from-config.json"))
	require.NoError(t, cfg.Set("cache.ttl_ms", 5000))

	opts := ResolveOptions(cfg)

	assert.Equal(t, "/tmp/from-env.json", opts.Path)
	assert.Equal(t, 250*time.Millisecond, opts.TTL)
}

func TestResolveOptions_ConfigDirOverride(t *testing.T) {
	t.Setenv(EnvCacheFile, "")
	t.Setenv(EnvCacheDir, "")

	cfg := memory.NewConfigStore()
	require.NoError(t, cfg.Set("cache.dir", "/tmp/metcha-config-dir"))

	opts := ResolveOptions(cfg)

	assert.Equal(t, filepath.Join("/tmp/metcha-config-dir", "cache.json"), opts.Path)
}

func TestResolveOptions_NilConfig(t *testing.T) {
	t.Setenv(EnvCacheFile, "")
	t.Setenv(EnvCacheDir, "")
	t.Setenv(EnvCacheTTL, "")

	opts := ResolveOptions(nil)

	assert.Equal(t, DefaultOptions(), opts)
}
