package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct business workflow.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──> Ready ──> OutForDelivery ──> Delivered ──> Refunded
//	   │            │             │           │              │
//	   └────────────┴─────────────┴───────────┴──────────────┴──> Cancelled
//
// Confirmed and Preparing may also hand off directly to OutForDelivery when
// the delivery platform assigns a driver before the kitchen flags the order
// as ready. Delivered, Cancelled, and Refunded are terminal; Delivered
// additionally permits the Refunded transition.
//
// Status is a value object that validates state transitions
// and provides string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first placed
	// and awaits acceptance by the business.
	Pending

	// Confirmed indicates the business accepted the order.
	Confirmed

	// Preparing indicates the kitchen or store is working on the order.
	Preparing

	// Ready indicates the order is ready for pickup by a driver or customer.
	Ready

	// OutForDelivery indicates a driver picked the order up and is en route.
	OutForDelivery

	// Delivered indicates the order reached the customer.
	// Terminal except for the Refunded transition.
	Delivered

	// Cancelled indicates the order was cancelled before delivery.
	// This is a final state with no further transitions allowed.
	Cancelled

	// Refunded indicates a delivered order was refunded.
	// This is a final state with no further transitions allowed.
	Refunded
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Confirmed:      "confirmed",
		Preparing:      "preparing",
		Ready:          "ready",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
		Refunded:       "refunded",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:        "pending",
		Confirmed:      "confirmed",
		Preparing:      "preparing",
		Ready:          "ready",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
		Refunded:       "refunded",
	}
}

// getTransitions returns the allowed transition set for each valid status.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal statuses have no outgoing transitions
	return map[Status][]Status{
		Pending:        {Confirmed, Cancelled},
		Confirmed:      {Preparing, Ready, OutForDelivery, Cancelled},
		Preparing:      {Ready, OutForDelivery, Cancelled},
		Ready:          {OutForDelivery, Cancelled},
		OutForDelivery: {Delivered, Cancelled},
		Delivered:      {Refunded},
	}
}

// StatusFromString parses a status from its wire representation
// (e.g. "out_for_delivery"). Returns an error for unknown values.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("%q is not a valid status", s),
	)
}

// Validate checks if the Status value is valid.
// Unknown (0) and any other undefined values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status ("pending", "confirmed", ...).
// Returns "unknown" for invalid values. Implements fmt.Stringer and is safe
// to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status admits no further transitions at all.
// Delivered is not terminal in this sense because it still permits Refunded.
func (s Status) IsTerminal() bool {
	return s.Validate() == nil && len(getTransitions()[s]) == 0
}

// CanTransitionTo reports whether the transition graph allows moving from the
// current status to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the status to next, enforcing the transition graph.
//
// Returns:
//   - (next, nil) on a valid transition
//   - (0, error) if either status is invalid or the graph forbids the move
//
// This method is used by Order.UpdateStatus to enforce the lifecycle.
//
// Example:
//
//	next, err := current.Transition(order.Confirmed)
//	if err != nil {
//	    // Handle invalid transition
//	}
func (s Status) Transition(next Status) (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if err := next.Validate(); err != nil {
		return 0, err
	}

	if !s.CanTransitionTo(next) {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("transition from %s to %s is not allowed", s, next),
		)
	}

	return next, nil
}
