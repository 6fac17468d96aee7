// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Provider: An opaque source of raw search results
//   - ResultCache: Keyed, TTL-expiring raw result storage
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - HistoryStore: Completed-search records. Without it, the history
//     commands report nothing and searches are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or provider package
package driven
