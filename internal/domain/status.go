// Package domain – status vocabularies and derivation.
//
// Each entity carries one canonical internal status representation; any
// external wire vocabulary is a presentation concern of its consumer, not a
// second source of truth. The car status is a pure function of the car's
// repairs and payment (DeriveCarStatus); mutating paths recompute it rather
// than hand-setting it.
package domain

// CarStatus is the externally visible aggregate state of a car.
type CarStatus string

const (
	CarWaiting  CarStatus = "waiting"   // deposited, no active repair slot held
	CarInRepair CarStatus = "in_repair" // at least one active repair, bay bound
	CarRepaired CarStatus = "repaired"  // every repair done, bay released
	CarPaid     CarStatus = "paid"      // payment finalized, terminal
)

// ParseCarStatus validates a car status string from an external source.
func ParseCarStatus(s string) (CarStatus, bool) {
	switch CarStatus(s) {
	case CarWaiting, CarInRepair, CarRepaired, CarPaid:
		return CarStatus(s), true
	}
	return "", false
}

// RepairState is the lifecycle state of a single repair.
type RepairState string

const (
	RepairPending    RepairState = "pending"
	RepairInProgress RepairState = "in_progress"
	RepairDone       RepairState = "done"
)

// ParseRepairState validates a repair state string from an external source.
func ParseRepairState(s string) (RepairState, bool) {
	switch RepairState(s) {
	case RepairPending, RepairInProgress, RepairDone:
		return RepairState(s), true
	}
	return "", false
}

// PaymentStatus is the state of a car's payment record.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// SlotKind distinguishes the two repair bays from the single waiting bay.
type SlotKind string

const (
	SlotRepair  SlotKind = "repair"
	SlotWaiting SlotKind = "waiting"
)

// DeriveCarStatus computes the car status from its repairs and payment.
//
// Precedence, highest first:
//   - paid:      the payment has been finalized (terminal).
//   - repaired:  at least one repair exists and all are done.
//   - in_repair: at least one repair is pending or in progress.
//   - waiting:   no repairs exist yet.
func DeriveCarStatus(repairs []Repair, payment *Payment) CarStatus {
	if payment != nil && payment.Status == PaymentPaid {
		return CarPaid
	}
	if len(repairs) == 0 {
		return CarWaiting
	}
	allDone := true
	for _, r := range repairs {
		if r.State != RepairDone {
			allDone = false
			break
		}
	}
	if allDone {
		return CarRepaired
	}
	return CarInRepair
}
