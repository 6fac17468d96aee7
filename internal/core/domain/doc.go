// Package domain defines the core business entities for Metcha.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawResult: An unprocessed hit returned by one provider
//   - Contribution: A raw result attributed to the provider that produced it
//   - AggregatedResult: All contributions sharing a URL, merged
//   - SearchSnapshot: One point-in-time view of a streaming search
//   - SortPolicy: The deterministic orderings a result list can carry
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
