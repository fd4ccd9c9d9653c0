package driver

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrDriverIDIsRequired is returned when attempting to create a driver without an external ID.
	ErrDriverIDIsRequired = errs.NewValueIsRequiredError("driver id")
	// ErrNameIsRequired is returned when attempting to create a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a driver without a phone number.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or RestoreDriver constructor")

	// ErrDriverUnavailable is returned when an assignment targets a driver that
	// is no longer eligible, typically because a concurrent assignment won the
	// race. Callers may retry against the next candidate.
	ErrDriverUnavailable = errors.New("driver is not available for assignment")

	// ErrNoActiveAssignment is returned when completing a delivery on a driver
	// that has no active order, or a different one than the caller expects.
	// No stats are mutated when this error is returned.
	ErrNoActiveAssignment = errors.New("driver has no matching active assignment")
)

// Position is a driver's last reported location and when it was reported.
type Position struct {
	Point     kernel.GeoPoint
	UpdatedAt time.Time
}

// Stats carries a driver's rolling delivery statistics.
// AverageRating is a running weighted average over rated deliveries.
type Stats struct {
	CompletedDeliveries int
	TotalEarnings       float64
	AverageRating       float64
}

// Driver represents a delivery driver in the system.
// It is an aggregate root that manages driver identity, availability,
// location, and the single active order assignment.
//
// Key invariant: the driver carries an active order if and only if its
// status is Busy. Assignment and completion are the only operations that
// move the driver in and out of Busy.
//
// Business rules:
//   - Driver must have a valid UUID, non-empty external driver ID, name, and phone
//   - Only active, verified, available drivers with a known location are
//     eligible for matching
//   - Completing a delivery updates the running weighted average rating:
//     newAvg = (oldAvg*(n-1) + rating) / n, where n is the completed-delivery
//     count after the increment
//   - Failed completion preconditions leave the stats untouched
type Driver struct {
	id          kernel.UUID
	driverID    string
	name        string
	phone       string
	vehicleType string

	status     Status
	isActive   bool
	isVerified bool

	location       *Position
	currentOrderID *kernel.UUID
	lastActiveAt   time.Time

	stats Stats

	guard guard.ConstructorGuard
}

// NewDriver creates a new Driver with the specified identity.
// The driver starts Offline, inactive-location, with zeroed stats; activation
// and verification are flags flipped by the onboarding flow upstream.
//
// Parameters:
//   - id: Unique identifier for the driver record
//   - driverID: External (platform-facing) driver identifier, unique per fleet
//   - name: Human-readable name (must be non-empty)
//   - phone: Contact phone (must be non-empty, unique per fleet)
//   - vehicleType: Free-form vehicle descriptor ("motorbike", "car", ...)
//
// Returns the created driver, or an aggregated validation error.
func NewDriver(id kernel.UUID, driverID string, name string, phone string, vehicleType string) (*Driver, error) {
	d := &Driver{
		status:       StatusOffline,
		lastActiveAt: time.Now().UTC(),
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setDriverID(driverID),
		d.setName(name),
		d.setPhone(phone),
	); err != nil {
		return nil, err
	}

	d.vehicleType = vehicleType
	return d, nil
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage,
// preserving its status, location, assignment, and stats. The restored driver
// behaves identically to one mutated through domain operations.
func RestoreDriver(
	id kernel.UUID,
	driverID string,
	name string,
	phone string,
	vehicleType string,
	status Status,
	isActive bool,
	isVerified bool,
	location *Position,
	currentOrderID *kernel.UUID,
	lastActiveAt time.Time,
	stats Stats,
) (*Driver, error) {
	d := &Driver{
		isActive:       isActive,
		isVerified:     isVerified,
		location:       location,
		currentOrderID: currentOrderID,
		lastActiveAt:   lastActiveAt,
		stats:          stats,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setDriverID(driverID),
		d.setName(name),
		d.setPhone(phone),
		d.setStatus(status),
	); err != nil {
		return nil, err
	}

	d.vehicleType = vehicleType

	if err := d.validateAssignmentInvariant(); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate checks if the Driver was properly constructed via a constructor.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers for equality based on their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	if other == nil {
		return false
	}
	return d.id.IsEqual(other.id)
}

// ID returns the unique identifier of the driver record.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// DriverID returns the external platform-facing driver identifier.
func (d *Driver) DriverID() string {
	return d.driverID
}

// Name returns the driver's name.
func (d *Driver) Name() string {
	return d.name
}

// Phone returns the driver's contact phone.
func (d *Driver) Phone() string {
	return d.phone
}

// VehicleType returns the driver's vehicle descriptor.
func (d *Driver) VehicleType() string {
	return d.vehicleType
}

// Status returns the driver's availability status.
func (d *Driver) Status() Status {
	return d.status
}

// IsActive reports whether the driver account is active.
func (d *Driver) IsActive() bool {
	return d.isActive
}

// IsVerified reports whether the driver passed verification.
func (d *Driver) IsVerified() bool {
	return d.isVerified
}

// Location returns the last reported position, or nil if never reported.
func (d *Driver) Location() *Position {
	return d.location
}

// CurrentOrderID returns the active order's identifier, or nil when idle.
func (d *Driver) CurrentOrderID() *kernel.UUID {
	return d.currentOrderID
}

// LastActiveAt returns when the driver last interacted with the system.
func (d *Driver) LastActiveAt() time.Time {
	return d.lastActiveAt
}

// Stats returns the driver's rolling delivery statistics.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Activate marks the driver account active.
func (d *Driver) Activate() { d.isActive = true }

// Verify marks the driver as verified.
func (d *Driver) Verify() { d.isVerified = true }

// IsEligible reports whether the driver can be matched to an order right now:
// available, active, verified, idle, and with a known location.
func (d *Driver) IsEligible() bool {
	return d.status == StatusAvailable &&
		d.isActive &&
		d.isVerified &&
		d.currentOrderID == nil &&
		d.location != nil
}

// AssignOrder assigns the given order to the driver, moving it to Busy.
//
// Returns ErrDriverUnavailable if the driver is not currently eligible, which
// is how a lost assignment race surfaces at the domain level. The persistence
// layer additionally enforces this as a conditional update so that two
// concurrent assignments can never both succeed.
func (d *Driver) AssignOrder(orderID kernel.UUID) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	if !d.IsEligible() {
		return fmt.Errorf("%w: driver %s is %s", ErrDriverUnavailable, d.driverID, d.status)
	}

	id := orderID
	d.currentOrderID = &id
	d.status = StatusBusy
	d.lastActiveAt = time.Now().UTC()
	return nil
}

// CompleteDelivery finishes the driver's active delivery of the given order.
//
// Preconditions: the driver must be Busy with exactly this order. On success
// the assignment is cleared, the driver returns to Available, earnings are
// accumulated, and - when a rating is provided - the running weighted average
// rating is updated as newAvg = (oldAvg*(n-1) + rating) / n with n being the
// completed-delivery count after the increment.
//
// Returns ErrNoActiveAssignment when the preconditions are unmet; stats are
// not mutated in that case.
func (d *Driver) CompleteDelivery(orderID kernel.UUID, rating *float64, earnings float64) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if d.currentOrderID == nil || !d.currentOrderID.IsEqual(orderID) {
		return fmt.Errorf("%w: driver %s", ErrNoActiveAssignment, d.driverID)
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return errs.NewValueIsOutOfRangeError("rating", *rating, 0, 5)
	}

	d.stats.CompletedDeliveries++
	d.stats.TotalEarnings += earnings
	if rating != nil {
		n := float64(d.stats.CompletedDeliveries)
		d.stats.AverageRating = (d.stats.AverageRating*(n-1) + *rating) / n
	}

	d.currentOrderID = nil
	d.status = StatusAvailable
	d.lastActiveAt = time.Now().UTC()
	return nil
}

// UpdateLocation records a new reported position, stamping its report time
// and the driver's last activity.
func (d *Driver) UpdateLocation(point kernel.GeoPoint) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := point.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	d.location = &Position{Point: point, UpdatedAt: now}
	d.lastActiveAt = now
	return nil
}

// SetStatus changes the driver's availability status.
//
// Busy cannot be set directly - it is entered only through AssignOrder - and
// a driver carrying an active order cannot leave Busy except through
// CompleteDelivery; both violations return ErrDriverUnavailable-class
// conflicts to keep the status/assignment invariant intact.
func (d *Driver) SetStatus(status Status) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := status.Validate(); err != nil {
		return err
	}

	if status == StatusBusy {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver status", errors.New("busy can only be entered through order assignment"))
	}
	if d.currentOrderID != nil {
		return fmt.Errorf("%w: driver %s still carries order %s",
			ErrNoActiveAssignment, d.driverID, d.currentOrderID)
	}

	d.status = status
	d.lastActiveAt = time.Now().UTC()
	return nil
}

// validateAssignmentInvariant enforces currentOrderID != nil <=> status == Busy.
func (d *Driver) validateAssignmentInvariant() error {
	hasOrder := d.currentOrderID != nil
	if hasOrder != (d.status == StatusBusy) {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver status",
			fmt.Errorf("status %s is inconsistent with active order presence (%t)", d.status, hasOrder),
		)
	}
	return nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setDriverID(driverID string) error {
	if driverID == "" {
		return ErrDriverIDIsRequired
	}
	d.driverID = driverID
	return nil
}

func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Driver) setPhone(phone string) error {
	if phone == "" {
		return ErrPhoneIsRequired
	}
	d.phone = phone
	return nil
}

func (d *Driver) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	d.status = status
	return nil
}
