package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortPolicy selects one of the deterministic orderings over aggregated
// results.
type SortPolicy string

const (
	// SortRelevance orders by contributing provider count, then summed
	// score, then effective timestamp, all descending. The default.
	SortRelevance SortPolicy = "relevance"

	// SortRecency orders by effective timestamp, then summed score,
	// both descending.
	SortRecency SortPolicy = "recency"

	// SortSource orders by contributing provider count descending, then
	// the joined provider-id list ascending, then summed score descending.
	SortSource SortPolicy = "source"
)

// SortPolicies lists every supported policy, default first.
func SortPolicies() []SortPolicy {
	return []SortPolicy{SortRelevance, SortRecency, SortSource}
}

// ParseSortPolicy validates a sort key. The empty string maps to
// SortRelevance.
func ParseSortPolicy(s string) (SortPolicy, error) {
	switch SortPolicy(s) {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortRecency, SortSource:
		return SortPolicy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortPolicy, s)
	}
}

// SortResults returns a new slice ordered by the given policy. The input
// is never mutated. An unrecognized policy (including the zero value)
// sorts by relevance.
//
// Every comparator is total: ties on the primary key fall through to
// explicit secondary keys. The sort is stable, so re-sorting an already
// sorted slice yields an identical order.
func SortResults(results []AggregatedResult, policy SortPolicy) []AggregatedResult {
	sorted := make([]AggregatedResult, len(results))
	copy(sorted, results)

	var less func(a, b AggregatedResult) bool
	switch policy {
	case SortRecency:
		less = lessByRecency
	case SortSource:
		less = lessBySource
	default:
		less = lessByRelevance
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func lessByRelevance(a, b AggregatedResult) bool {
	if len(a.Providers) != len(b.Providers) {
		return len(a.Providers) > len(b.Providers)
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.EffectiveTimestamp() > b.EffectiveTimestamp()
}

func lessByRecency(a, b AggregatedResult) bool {
	if ta, tb := a.EffectiveTimestamp(), b.EffectiveTimestamp(); ta != tb {
		return ta > tb
	}
	return a.Score > b.Score
}

func lessBySource(a, b AggregatedResult) bool {
	if len(a.Providers) != len(b.Providers) {
		return len(a.Providers) > len(b.Providers)
	}
	ja, jb := strings.Join(a.Providers, ","), strings.Join(b.Providers, ",")
	if ja != jb {
		return ja < jb
	}
	return a.Score > b.Score
}
