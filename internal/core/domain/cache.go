package domain

import "strconv"

// CacheKey derives the deterministic key for one provider call. The
// limit renders empty when unset so "no hint" never collides with an
// explicit hint.
func CacheKey(providerID, query string, limit int) string {
	l := ""
	if limit > 0 {
		l = strconv.Itoa(limit)
	}
	return providerID + "::" + query + "::" + l
}

// CacheStats summarizes the on-disk result cache.
type CacheStats struct {
	// Entries is the number of cached entries, expired ones included.
	Entries int `json:"entries"`

	// Expired is how many of those entries are past their expiry.
	Expired int `json:"expired"`

	// SizeBytes is the cache file size, zero when the file does not
	// exist yet.
	SizeBytes int64 `json:"sizeBytes"`

	// Path is the cache file location.
	Path string `json:"path"`
}
