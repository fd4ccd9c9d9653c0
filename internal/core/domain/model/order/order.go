package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder factory methods. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrDeliveryCoordinatesMissing is returned when an operation requires the
	// delivery address to carry coordinates and it does not.
	ErrDeliveryCoordinatesMissing = errs.NewValueIsRequiredError("delivery address coordinates")
)

// DeliveryType indicates how an order reaches the customer.
type DeliveryType int

const (
	// DeliveryTypeUnknown represents an invalid or undefined delivery type.
	DeliveryTypeUnknown DeliveryType = iota
	// DeliveryTypePickup means the customer collects the order in person.
	DeliveryTypePickup
	// DeliveryTypeDelivery means a driver brings the order to the customer.
	DeliveryTypeDelivery
)

// Validate checks if the DeliveryType value is valid.
func (d DeliveryType) Validate() error {
	if d != DeliveryTypePickup && d != DeliveryTypeDelivery {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery type", fmt.Errorf("%d is not a valid delivery type", d))
	}
	return nil
}

// String returns the wire name of the delivery type.
func (d DeliveryType) String() string {
	switch d {
	case DeliveryTypePickup:
		return "pickup"
	case DeliveryTypeDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Customer holds the contact details of the person who placed the order.
type Customer struct {
	Name  string
	Phone string
	Email string
}

// Item is a single ordered line: what was ordered, how many, and at what unit price.
type Item struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// Payment summarizes the money side of the order.
type Payment struct {
	Subtotal    float64
	DeliveryFee float64
	Total       float64
	Method      string
}

// Address is the delivery destination. Location is optional: orders imported
// from some channels carry only a street line, and such orders cannot be
// dispatched to a driver until coordinates are provided.
type Address struct {
	Street   string
	Location *kernel.GeoPoint
}

// Coordinates returns the address location and whether it is present.
func (a Address) Coordinates() (kernel.GeoPoint, bool) {
	if a.Location == nil {
		return kernel.GeoPoint{}, false
	}
	return *a.Location, true
}

// DriverInfo is a denormalized snapshot of the driver assigned to an order.
// It is deliberately not a live reference: the snapshot records who was
// assigned at assignment time, even if the driver record changes later.
type DriverInfo struct {
	DriverID    string
	Name        string
	Phone       string
	VehicleType string

	// EstimatedPickupAt and TrackingURL are only known for platform-assigned
	// drivers; both stay zero for assignments made from the local fleet.
	EstimatedPickupAt *time.Time
	TrackingURL       string
}

// Validate checks the snapshot carries the minimum identifying fields.
func (d DriverInfo) Validate() error {
	if d.DriverID == "" {
		return errs.NewValueIsRequiredError("driver info driver id")
	}
	if d.Name == "" {
		return errs.NewValueIsRequiredError("driver info name")
	}
	return nil
}

// Order represents a customer order in the system. It is the aggregate root that
// manages the order lifecycle from placement through delivery or cancellation.
//
// Order follows these invariants:
//   - Must have a valid unique identifier, order number, and business identifier
//   - Must have at least one item with positive quantity and non-negative price
//   - Status transitions follow the graph defined by Status
//   - Each lifecycle timestamp is set at most once, exactly when the order
//     enters the corresponding state
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	id          kernel.UUID
	orderNumber string
	businessID  kernel.UUID

	customer Customer
	items    []Item
	payment  Payment

	status       Status
	deliveryType DeliveryType
	address      *Address

	confirmedAt *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	completedAt *time.Time

	estimatedReadyTime *time.Time
	businessNotes      string

	driverInfo       *DriverInfo
	driverAssignedAt *time.Time

	// version supports optimistic concurrency at the persistence boundary.
	version int64

	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in Pending status with validation. This is the
// primary way to create a valid Order for a fresh placement.
//
// Parameters:
//   - id: Unique identifier for the order
//   - orderNumber: Human-facing unique order number
//   - businessID: Owning business identifier
//   - customer: Customer contact details (name required)
//   - items: Ordered lines (at least one; positive quantities)
//   - deliveryType: Pickup or delivery
//   - address: Delivery destination (required for delivery orders)
//   - payment: Payment summary
//
// Returns the created order, or an aggregated validation error.
func NewOrder(
	id kernel.UUID,
	orderNumber string,
	businessID kernel.UUID,
	customer Customer,
	items []Item,
	deliveryType DeliveryType,
	address *Address,
	payment Payment,
) (*Order, error) {
	o := &Order{
		status:  Pending,
		payment: payment,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderNumber(orderNumber),
		o.setBusinessID(businessID),
		o.setCustomer(customer),
		o.setItems(items),
		o.setDeliveryType(deliveryType),
		o.setAddress(deliveryType, address),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage,
// preserving its lifecycle state, timestamps, and driver snapshot. The
// restored order behaves identically to one mutated through domain operations.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	businessID kernel.UUID,
	customer Customer,
	items []Item,
	deliveryType DeliveryType,
	address *Address,
	payment Payment,
	status Status,
	timestamps Timestamps,
	estimatedReadyTime *time.Time,
	businessNotes string,
	driverInfo *DriverInfo,
	driverAssignedAt *time.Time,
	version int64,
) (*Order, error) {
	o := &Order{
		payment:            payment,
		estimatedReadyTime: estimatedReadyTime,
		businessNotes:      businessNotes,
		driverInfo:         driverInfo,
		driverAssignedAt:   driverAssignedAt,
		version:            version,
		guard:              guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderNumber(orderNumber),
		o.setBusinessID(businessID),
		o.setCustomer(customer),
		o.setItems(items),
		o.setDeliveryType(deliveryType),
		o.setAddress(deliveryType, address),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	o.confirmedAt = timestamps.ConfirmedAt
	o.pickedUpAt = timestamps.PickedUpAt
	o.deliveredAt = timestamps.DeliveredAt
	o.completedAt = timestamps.CompletedAt

	return o, nil
}

// Timestamps groups the lifecycle timestamps for restoration from storage.
type Timestamps struct {
	ConfirmedAt *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CompletedAt *time.Time
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// OrderNumber returns the human-facing unique order number.
func (o *Order) OrderNumber() string {
	return o.orderNumber
}

// BusinessID returns the identifier of the owning business.
func (o *Order) BusinessID() kernel.UUID {
	return o.businessID
}

// Customer returns the customer contact details.
func (o *Order) Customer() Customer {
	return o.customer
}

// Items returns the ordered lines. The returned slice is a copy.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Payment returns the payment summary.
func (o *Order) Payment() Payment {
	return o.payment
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// DeliveryType returns how the order reaches the customer.
func (o *Order) DeliveryType() DeliveryType {
	return o.deliveryType
}

// Address returns the delivery destination, or nil for pickup orders without one.
func (o *Order) Address() *Address {
	return o.address
}

// ConfirmedAt returns when the order was confirmed, or nil.
func (o *Order) ConfirmedAt() *time.Time { return o.confirmedAt }

// PickedUpAt returns when a driver picked the order up, or nil.
func (o *Order) PickedUpAt() *time.Time { return o.pickedUpAt }

// DeliveredAt returns when the order was delivered, or nil.
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }

// CompletedAt returns when the order reached a completed state
// (delivered or cancelled), or nil.
func (o *Order) CompletedAt() *time.Time { return o.completedAt }

// EstimatedReadyTime returns the estimate communicated to the customer, or nil.
func (o *Order) EstimatedReadyTime() *time.Time { return o.estimatedReadyTime }

// BusinessNotes returns the notes the business attached to the order.
func (o *Order) BusinessNotes() string { return o.businessNotes }

// DriverInfo returns the assigned driver snapshot, or nil if unassigned.
func (o *Order) DriverInfo() *DriverInfo {
	return o.driverInfo
}

// DriverAssignedAt returns when a driver was assigned, or nil.
func (o *Order) DriverAssignedAt() *time.Time { return o.driverAssignedAt }

// Version returns the optimistic-concurrency version of the aggregate as
// loaded from storage. New aggregates start at version 0.
func (o *Order) Version() int64 {
	return o.version
}

// UpdateStatus transitions the order to newStatus, enforcing the transition
// graph, attaching the business notes, and stamping the matching lifecycle
// timestamp exactly once:
//
//   - Confirmed stamps confirmedAt
//   - Delivered stamps deliveredAt and completedAt
//   - Cancelled stamps completedAt
//
// Side effects of the transition (platform relay, customer notification) are
// the application layer's concern; the aggregate only applies state.
func (o *Order) UpdateStatus(newStatus Status, notes string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	next, err := o.status.Transition(newStatus)
	if err != nil {
		return err
	}

	o.status = next
	if notes != "" {
		o.businessNotes = notes
	}
	o.stampFor(next, time.Now().UTC())
	return nil
}

// MarkPickedUp records that a driver picked the order up at the given time.
// Moves the order to OutForDelivery if it is not already there and stamps
// pickedUpAt exactly once. A non-empty note replaces the business notes.
// Returns an error if the lifecycle forbids the move.
func (o *Order) MarkPickedUp(at time.Time, note string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.status != OutForDelivery {
		next, err := o.status.Transition(OutForDelivery)
		if err != nil {
			return err
		}
		o.status = next
	}

	stampOnce(&o.pickedUpAt, at)
	if note != "" {
		o.businessNotes = note
	}
	return nil
}

// MarkDelivered records delivery at the given time: transitions to Delivered
// and stamps deliveredAt and completedAt exactly once. A non-empty note
// replaces the business notes.
func (o *Order) MarkDelivered(at time.Time, note string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	next, err := o.status.Transition(Delivered)
	if err != nil {
		return err
	}

	o.status = next
	o.stampFor(Delivered, at)
	if note != "" {
		o.businessNotes = note
	}
	return nil
}

// AssignDriver attaches a driver snapshot to the order and stamps
// driverAssignedAt. Reassignment overwrites the snapshot but keeps the
// original assignment time.
func (o *Order) AssignDriver(info DriverInfo) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := info.Validate(); err != nil {
		return err
	}
	if o.status.IsTerminal() || o.status == Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("cannot assign a driver to a %s order", o.status),
		)
	}

	o.driverInfo = &info
	stampOnce(&o.driverAssignedAt, time.Now().UTC())
	return nil
}

// SetEstimatedReadyTime records the estimate communicated to the customer.
func (o *Order) SetEstimatedReadyTime(at time.Time) {
	t := at
	o.estimatedReadyTime = &t
}

// stampFor sets the lifecycle timestamps matching the entered status.
func (o *Order) stampFor(entered Status, at time.Time) {
	//nolint:exhaustive // only terminal-ish entries carry timestamps
	switch entered {
	case Confirmed:
		stampOnce(&o.confirmedAt, at)
	case Delivered:
		stampOnce(&o.deliveredAt, at)
		stampOnce(&o.completedAt, at)
	case Cancelled:
		stampOnce(&o.completedAt, at)
	}
}

// stampOnce sets the target timestamp only if it has not been set before.
func stampOnce(target **time.Time, at time.Time) {
	if *target != nil {
		return
	}
	t := at
	*target = &t
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.orderNumber = orderNumber
	return nil
}

func (o *Order) setBusinessID(businessID kernel.UUID) error {
	if err := businessID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("business id", err)
	}
	o.businessID = businessID
	return nil
}

func (o *Order) setCustomer(customer Customer) error {
	if customer.Name == "" {
		return errs.NewValueIsRequiredError("customer name")
	}
	o.customer = customer
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if item.Name == "" {
			return errs.NewValueIsRequiredError("item name")
		}
		if item.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause(
				"item quantity", fmt.Errorf("%d is not greater than 0", item.Quantity))
		}
		if item.UnitPrice < 0 {
			return errs.NewValueIsInvalidErrorWithCause(
				"item unit price", fmt.Errorf("%f is negative", item.UnitPrice))
		}
	}

	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setDeliveryType(deliveryType DeliveryType) error {
	if err := deliveryType.Validate(); err != nil {
		return err
	}
	o.deliveryType = deliveryType
	return nil
}

func (o *Order) setAddress(deliveryType DeliveryType, address *Address) error {
	if deliveryType == DeliveryTypeDelivery && address == nil {
		return errs.NewValueIsRequiredError("delivery address")
	}
	if address != nil && address.Location != nil {
		if err := address.Location.Validate(); err != nil {
			return err
		}
	}
	o.address = address
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
