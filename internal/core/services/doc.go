// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Aggregator is the centre of gravity: one fan-out goroutine per
// enabled provider, one coordinating drain goroutine per search, and
// the Registry and ResultCache collaborating underneath.
package services
