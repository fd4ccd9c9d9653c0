// Package order provides domain entities and business logic for order lifecycle
// management in the dispatch core. It implements the Order aggregate root with
// state transitions, lifecycle timestamps, and the assigned-driver snapshot.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, properties, and lifecycle
//   - Status: A state machine that enforces valid order status transitions
//   - DriverInfo: A denormalized snapshot of the driver assigned to an order
//
// Key business rules:
//   - Orders must have a valid unique identifier, order number, business, and items
//   - Order status follows the defined workflow; terminal states accept no
//     further transitions (Delivered additionally permits Refunded)
//   - Each lifecycle timestamp (confirmedAt, pickedUpAt, deliveredAt, completedAt)
//     is set at most once, exactly when the order enters the corresponding state
//   - The driver snapshot is denormalized on purpose: it records the assignment,
//     not a live reference to the driver record
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
