// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the dispatch system. It implements logic
// that doesn't naturally belong to a single aggregate root.
//
// The package includes:
//   - DriverMatcher: A domain service that ranks eligible drivers by proximity
//
// Domain services coordinate between aggregates, implementing business logic that
// spans multiple bounded contexts following Domain-Driven Design principles.
package services
