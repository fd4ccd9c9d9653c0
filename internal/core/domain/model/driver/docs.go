// Package driver provides domain entities and business logic for delivery
// driver management in the dispatch core.
//
// The package includes:
//   - Driver: The aggregate root managing identity, availability, location,
//     the single active order assignment, and rolling delivery stats
//   - Status: The driver availability enum (offline, available, busy,
//     on_break, unavailable)
//
// Key business rules:
//   - A driver carries an active order if and only if its status is busy;
//     assignment and completion are the only ways in and out of busy
//   - Only active, verified, available drivers with a known location are
//     eligible for matching
//   - The average rating is a running weighted average over rated deliveries,
//     and failed completions never touch the stats
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package driver
