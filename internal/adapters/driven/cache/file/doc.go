// Package file provides the JSON-file-backed result cache.
//
// The cache is a single versioned document holding every entry, loaded
// lazily once per process and rewritten in full on every change. Writes
// are atomic (temp file plus rename) and guarded by a lock file so
// concurrent metcha processes never interleave partial writes.
//
// The store implements both the driven ResultCache port used by the
// search path and the driving CacheService port used for maintenance
// commands.
package file
