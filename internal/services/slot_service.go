// Package services – SlotService
//
// This file implements the SlotService, the owner of the fixed bay inventory
// (2 repair bays, 1 waiting bay). It is the only component allowed to mutate
// slot occupancy: the repair workflow acquires and releases bays through it,
// and the administrative occupy/release endpoints go through the manual
// methods, which also rewrite the occupant car's status the way the
// automatic path would.
//
// Concurrency: a mutex serializes every occupancy mutation so two concurrent
// repair creations can never both bind the last free bay. The row updates
// additionally carry occupied-flag guards (see repo), so even a bypassing
// writer degrades to a detectable failure rather than silent double-binding.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
)

// slotOccupancy gauges the number of occupied bays per kind. Updated on every
// occupancy mutation and on report reads.
var slotOccupancy = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "garage_slots_occupied",
		Help: "Number of occupied garage slots by kind.",
	},
	[]string{"kind"},
)

func init() {
	prometheus.MustRegister(slotOccupancy)
}

// OccupancyReport is the read-only aggregate over the slot inventory.
type OccupancyReport struct {
	RepairTotal     int64 `json:"repair_total"`
	RepairFree      int64 `json:"repair_free"`
	RepairOccupied  int64 `json:"repair_occupied"`
	WaitingTotal    int64 `json:"waiting_total"`
	WaitingFree     int64 `json:"waiting_free"`
	WaitingOccupied int64 `json:"waiting_occupied"`
}

// SlotService owns slot occupancy. All mutating methods are safe for
// concurrent use.
type SlotService struct {
	// DB is the database handle used for slot operations that open their own
	// transaction (the manual occupy/release paths and reports).
	DB *gorm.DB

	mu sync.Mutex
}

// NewSlotService constructs a SlotService over the given handle.
func NewSlotService(db *gorm.DB) *SlotService {
	return &SlotService{DB: db}
}

// TryAcquireRepair binds a free repair bay to carID inside the caller's
// transaction.
//
// Errors:
//   - ErrSlotAlreadyBound when the car already occupies any slot (callers
//     that want to migrate a car out of the waiting bay release it first,
//     inside the same transaction).
//   - ErrNoSlotAvailable when both repair bays are occupied. This is the
//     expected capacity result; the caller leaves the car waiting.
func (s *SlotService) TryAcquireRepair(ctx context.Context, tx *gorm.DB, carID string) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := repo.SlotByCar(ctx, tx, carID); err == nil {
		return nil, ErrSlotAlreadyBound
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	slot, err := repo.FreeSlotByKind(ctx, tx, domain.SlotRepair)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoSlotAvailable
		}
		return nil, err
	}
	if err := repo.OccupySlot(ctx, tx, slot.ID, carID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Guard lost the row: treat as capacity exhaustion.
			return nil, ErrNoSlotAvailable
		}
		return nil, err
	}
	slot.Occupied = true
	slot.CarID = &carID
	s.refreshGauge(ctx, tx)
	return slot, nil
}

// Release frees slotID inside the caller's transaction. Releasing a slot
// that is already free fails with ErrSlotAlreadyFree and changes no state;
// callers treat that as a defect, not a user error.
func (s *SlotService) Release(ctx context.Context, tx *gorm.DB, slotID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked(ctx, tx, slotID)
}

func (s *SlotService) releaseLocked(ctx context.Context, tx *gorm.DB, slotID uint) error {
	if err := repo.ReleaseSlot(ctx, tx, slotID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Missing row vs already-free row: distinguish for the caller.
			if _, gerr := repo.GetSlot(ctx, tx, slotID); gerr != nil {
				return ErrSlotNotFound
			}
			return ErrSlotAlreadyFree
		}
		return err
	}
	s.refreshGauge(ctx, tx)
	return nil
}

// ReleaseByCar frees whatever slot carID holds, if any, inside the caller's
// transaction. Holding no slot is not an error on this path (car deletion
// uses it).
func (s *SlotService) ReleaseByCar(ctx context.Context, tx *gorm.DB, carID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := repo.SlotByCar(ctx, tx, carID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.releaseLocked(ctx, tx, slot.ID)
}

// Occupy is the administrative escape hatch mirroring the automatic path:
// it binds a specific slot to a specific car and rewrites the car status
// according to the slot kind (repair bay → in_repair, waiting bay →
// waiting), all in one transaction.
func (s *SlotService) Occupy(ctx context.Context, slotID uint, carID string) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := repo.GetSlot(ctx, tx, slotID)
		if err != nil {
			return ErrSlotNotFound
		}
		if slot.Occupied {
			return ErrSlotOccupied
		}
		if _, err := repo.GetCarLean(ctx, tx, carID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCarNotFound
			}
			return err
		}
		if _, err := repo.SlotByCar(ctx, tx, carID); err == nil {
			return ErrSlotAlreadyBound
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if err := repo.OccupySlot(ctx, tx, slotID, carID); err != nil {
			return err
		}

		status := domain.CarWaiting
		if slot.Kind == domain.SlotRepair {
			status = domain.CarInRepair
		}
		return repo.UpdateCarStatus(ctx, tx, carID, status)
	})
	if err != nil {
		return nil, err
	}
	s.refreshGauge(ctx, s.DB)
	return repo.GetSlot(ctx, s.DB, slotID)
}

// ReleaseManual is the administrative counterpart of Occupy: it frees the
// slot and parks the former occupant back in waiting status.
func (s *SlotService) ReleaseManual(ctx context.Context, slotID uint) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := repo.GetSlot(ctx, tx, slotID)
		if err != nil {
			return ErrSlotNotFound
		}
		if !slot.Occupied {
			return ErrSlotAlreadyFree
		}
		carID := slot.CarID
		if err := repo.ReleaseSlot(ctx, tx, slotID); err != nil {
			return err
		}
		if carID != nil {
			if err := repo.UpdateCarStatus(ctx, tx, *carID, domain.CarWaiting); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.refreshGauge(ctx, s.DB)
	return repo.GetSlot(ctx, s.DB, slotID)
}

// Get returns a single slot with its occupant.
func (s *SlotService) Get(ctx context.Context, slotID uint) (*domain.Slot, error) {
	slot, err := repo.GetSlot(ctx, s.DB, slotID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

// List returns the full inventory in ID order.
func (s *SlotService) List(ctx context.Context) ([]domain.Slot, error) {
	return repo.ListSlots(ctx, s.DB)
}

// Report returns the occupancy aggregate. Read-only, no side effects beyond
// refreshing the occupancy gauge.
func (s *SlotService) Report(ctx context.Context) (*OccupancyReport, error) {
	var rep OccupancyReport
	var err error
	if rep.RepairFree, err = repo.CountSlots(ctx, s.DB, domain.SlotRepair, false); err != nil {
		return nil, err
	}
	if rep.RepairOccupied, err = repo.CountSlots(ctx, s.DB, domain.SlotRepair, true); err != nil {
		return nil, err
	}
	if rep.WaitingFree, err = repo.CountSlots(ctx, s.DB, domain.SlotWaiting, false); err != nil {
		return nil, err
	}
	if rep.WaitingOccupied, err = repo.CountSlots(ctx, s.DB, domain.SlotWaiting, true); err != nil {
		return nil, err
	}
	rep.RepairTotal = rep.RepairFree + rep.RepairOccupied
	rep.WaitingTotal = rep.WaitingFree + rep.WaitingOccupied

	slotOccupancy.WithLabelValues(string(domain.SlotRepair)).Set(float64(rep.RepairOccupied))
	slotOccupancy.WithLabelValues(string(domain.SlotWaiting)).Set(float64(rep.WaitingOccupied))
	return &rep, nil
}

// refreshGauge recomputes the occupancy gauge from the given handle.
// Best effort: gauge staleness must never fail a business operation.
func (s *SlotService) refreshGauge(ctx context.Context, db *gorm.DB) {
	for _, kind := range []domain.SlotKind{domain.SlotRepair, domain.SlotWaiting} {
		if n, err := repo.CountSlots(ctx, db, kind, true); err == nil {
			slotOccupancy.WithLabelValues(string(kind)).Set(float64(n))
		}
	}
}
