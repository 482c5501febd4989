// Package services defines the business logic for the garage: slot
// allocation, the repair workflow, the car lifecycle, billing, and the
// intervention catalog. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Not-found conditions. No state mutation is attempted when these fire.
var (
	// ErrClientNotFound indicates that the requested client does not exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrCarNotFound indicates that the requested car does not exist.
	ErrCarNotFound = errors.New("car not found")

	// ErrRepairNotFound indicates that the requested repair does not exist.
	ErrRepairNotFound = errors.New("repair not found")

	// ErrSlotNotFound indicates that the requested slot does not exist.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrInterventionNotFound indicates that the requested intervention type
	// does not exist in the catalog.
	ErrInterventionNotFound = errors.New("intervention type not found")

	// ErrPaymentNotFound indicates that the car has no payment record. Since
	// payments are created with their car this points at an internal fault.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Capacity and contention conditions.
var (
	// ErrNoSlotAvailable is returned when every repair bay is occupied. This
	// is an expected declined-operation result, not a failure: the caller may
	// retry or queue the car.
	ErrNoSlotAvailable = errors.New("no repair slot available")

	// ErrSlotAlreadyFree is returned when releasing a slot that is not
	// occupied. It indicates a caller bug and is logged as a defect.
	ErrSlotAlreadyFree = errors.New("slot already free")

	// ErrSlotOccupied is returned when manually occupying a slot that already
	// holds a car.
	ErrSlotOccupied = errors.New("slot already occupied")

	// ErrSlotAlreadyBound is returned when a car would end up holding two
	// slots at once. The invariant is one slot per car system-wide; a breach
	// is an internal consistency fault.
	ErrSlotAlreadyBound = errors.New("car already occupies a slot")
)

// Business-rule conditions. Always locally recoverable: the single operation
// is rejected and all state is left untouched.
var (
	// ErrInvalidTransition is returned when a repair is started or finished
	// from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid repair state transition")

	// ErrCannotDeleteActive is returned when deleting an in-progress repair.
	ErrCannotDeleteActive = errors.New("cannot delete a repair in progress")

	// ErrCarClosed is returned when a repaired or paid car would accept new
	// work or lose finished work.
	ErrCarClosed = errors.New("car is closed to repair changes")

	// ErrCarNotReady is returned when paying for a car that is not yet
	// repaired.
	ErrCarNotReady = errors.New("car is not ready for payment")

	// ErrAlreadyPaid is returned when paying a car whose payment was already
	// finalized.
	ErrAlreadyPaid = errors.New("payment already finalized")

	// ErrInterventionInUse is returned when updating or deleting a catalog
	// entry that is referenced by at least one repair.
	ErrInterventionInUse = errors.New("intervention type is referenced by repairs")

	// ErrInterventionExists is returned when creating a catalog entry whose
	// name is already taken.
	ErrInterventionExists = errors.New("intervention type already exists")

	// ErrPlateTaken is returned when a car plate collides with an existing
	// one.
	ErrPlateTaken = errors.New("plate already registered")

	// ErrEmailTaken is returned when a client email collides with an existing
	// one.
	ErrEmailTaken = errors.New("email already registered")

	// ErrClientHasCars blocks deleting a client that still owns cars.
	ErrClientHasCars = errors.New("client still owns cars")
)
