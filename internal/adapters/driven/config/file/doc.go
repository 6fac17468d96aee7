// Package file provides the TOML-backed configuration store.
//
// Configuration lives at ~/.metcha/config.toml by default. Nested TOML
// tables flatten into dot-notation keys, so the store reads [cache]
// ttl_ms and "cache.ttl_ms" the same way. Environment variables win
// over file values; that precedence is applied by the composition root,
// not here.
package file
