package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the availability state of a driver.
//
// Available drivers can be matched to orders; Busy drivers carry exactly one
// active order; OnBreak and Unavailable drivers opted out temporarily;
// Offline drivers are disconnected. Busy can only be entered through order
// assignment, never set directly.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusOffline means the driver is disconnected from the system.
	StatusOffline

	// StatusAvailable means the driver can be matched to orders.
	StatusAvailable

	// StatusBusy means the driver carries an active order.
	// Entered only through order assignment.
	StatusBusy

	// StatusOnBreak means the driver paused matching temporarily.
	StatusOnBreak

	// StatusUnavailable means the driver opted out of matching.
	StatusUnavailable
)

// getStatusStrings returns a map of Status values to their wire representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:     "unknown",
		StatusOffline:     "offline",
		StatusAvailable:   "available",
		StatusBusy:        "busy",
		StatusOnBreak:     "on_break",
		StatusUnavailable: "unavailable",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusOffline:     "offline",
		StatusAvailable:   "available",
		StatusBusy:        "busy",
		StatusOnBreak:     "on_break",
		StatusUnavailable: "unavailable",
	}
}

// StatusFromString parses a driver status from its wire representation.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"driver status",
		fmt.Errorf("%q is not a valid driver status", s),
	)
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver status", fmt.Errorf("%d is not a valid driver status", s))
	}
	return nil
}

// String returns the wire name of the status. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}
