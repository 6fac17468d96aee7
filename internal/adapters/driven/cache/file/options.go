package file

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/metcha-cli/internal/logger"
)

const (
	// DefaultTTL is how long an entry lives when no override is set.
	DefaultTTL = 24 * time.Hour

	// EnvCacheFile overrides the full cache file path.
	EnvCacheFile = "METCHA_CACHE_FILE"

	// EnvCacheDir overrides the directory the default file name lives in.
	// Ignored when EnvCacheFile is set.
	EnvCacheDir = "METCHA_CACHE_DIR"

	// EnvCacheTTL overrides the entry TTL, in milliseconds. Zero turns
	// expiry off entirely.
	EnvCacheTTL = "METCHA_CACHE_TTL_MS"

	defaultDirName  = ".metcha"
	defaultFileName = "cache.json"
)

// Options configure the on-disk store.
type Options struct {
	// Path is the cache file location.
	Path string

	// TTL bounds entry lifetime. Zero or negative disables expiry, so
	// entries without an explicit expiresAt never age out.
	TTL time.Duration
}

// DefaultOptions returns ~/.metcha/cache.json with the default TTL.
func DefaultOptions() Options {
	return Options{Path: defaultPath(), TTL: DefaultTTL}
}

// OptionsFromEnv resolves options from the environment on top of the
// defaults. A full file path override wins over a directory override;
// an unparseable TTL is logged and ignored.
func OptionsFromEnv() Options {
	return applyEnv(DefaultOptions())
}

// ResolveOptions layers the three configuration sources: defaults, then
// the config store, then the environment. Later sources win.
func ResolveOptions(cfg driven.ConfigStore) Options {
	opts := DefaultOptions()

	if cfg != nil {
		if path := cfg.GetString(keyCacheFile); path != "" {
			opts.Path = path
		} else if dir := cfg.GetString(keyCacheDir); dir != "" {
			opts.Path = filepath.Join(dir, defaultFileName)
		}
		if raw, ok := cfg.Get(keyCacheTTL); ok {
			if ms := cfg.GetInt(keyCacheTTL); ms >= 0 {
				opts.TTL = time.Duration(ms) * time.Millisecond
			} else {
				logger.Warn("Ignoring invalid %s value %v", keyCacheTTL, raw)
			}
		}
	}

	return applyEnv(opts)
}

// Config store keys mirrored from the file config adapter; duplicated
// here to keep this package free of an adapter-to-adapter import.
const (
	keyCacheFile = "cache.file"
	keyCacheDir  = "cache.dir"
	keyCacheTTL  = "cache.ttl_ms"
)

func applyEnv(opts Options) Options {
	if path := os.Getenv(EnvCacheFile); path != "" {
		opts.Path = path
	} else if dir := os.Getenv(EnvCacheDir); dir != "" {
		opts.Path = filepath.Join(dir, defaultFileName)
	}

	if raw := os.Getenv(EnvCacheTTL); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			logger.Warn("Ignoring invalid %s value %q", EnvCacheTTL, raw)
		} else {
			opts.TTL = time.Duration(ms) * time.Millisecond
		}
	}

	return opts
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory, fall back to the working directory.
		logger.Warn("Cannot resolve home directory for cache file: %v", err)
		return defaultFileName
	}
	return filepath.Join(home, defaultDirName, defaultFileName)
}
