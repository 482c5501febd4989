// Package services – RepairService
//
// This file implements RepairService, the application-level component that
// owns the repair workflow (pending → in_progress → done). Creating a repair
// requires a repair bay: a car that holds none and cannot claim one is
// declined with ErrNoSlotAvailable. Finishing the last repair of a car flips
// the car to repaired and frees its bay. Every multi-row mutation runs in one
// transaction so a crash mid-operation leaves no half-applied state.
//
// Observability: the workflow methods are OpenTelemetry-instrumented; spans
// include car and repair identifiers.

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RepairService coordinates repair rows, car status, and bay occupancy.
type RepairService struct {
	DB    *gorm.DB
	Slots *SlotService
}

// Create registers a new repair for a car. The intervention is resolved
// through the catalog by ID. The car must end up in a repair bay: one it
// already holds, or a free one claimed inside the transaction. When both bays
// are busy Create returns ErrNoSlotAvailable and the rollback leaves cars,
// slots and repairs exactly as they were. Cars that are repaired or paid are
// closed to new work.
func (s *RepairService) Create(ctx context.Context, carID string, typeID uint) (*domain.Repair, error) {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("car.id", carID),
			attribute.Int("intervention.id", int(typeID)),
		),
	)
	defer span.End()

	var created *domain.Repair
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		car, err := repo.GetCarLean(ctx, tx, carID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCarNotFound
			}
			return err
		}
		if car.Status == domain.CarRepaired || car.Status == domain.CarPaid {
			return ErrCarClosed
		}
		if _, err := repo.GetIntervention(ctx, tx, typeID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInterventionNotFound
			}
			return err
		}

		if err := s.claimRepairBay(ctx, tx, carID); err != nil {
			return err
		}

		created, err = repo.CreateRepair(ctx, tx, carID, typeID)
		if err != nil {
			return err
		}
		return repo.UpdateCarStatus(ctx, tx, carID, domain.CarInRepair)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetRepair(ctx, s.DB, created.ID)
}

// claimRepairBay leaves the car holding a repair bay or fails. A car already
// in a repair bay keeps it. A car in the waiting bay is released from it
// before the claim; since both moves run inside the caller's transaction, a
// failed claim rolls the release back and the car stays where it was. When no
// repair bay is free the error is ErrNoSlotAvailable.
func (s *RepairService) claimRepairBay(ctx context.Context, tx *gorm.DB, carID string) error {
	held, err := repo.SlotByCar(ctx, tx, carID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if held != nil && held.Kind == domain.SlotRepair {
		return nil
	}
	if held != nil {
		// Waiting bay. Free it so TryAcquireRepair sees an unbound car.
		if err := s.Slots.Release(ctx, tx, held.ID); err != nil {
			return err
		}
	}
	_, err = s.Slots.TryAcquireRepair(ctx, tx, carID)
	return err
}

// Start moves a pending repair to in_progress and stamps StartedAt.
func (s *RepairService) Start(ctx context.Context, repairID string) (*domain.Repair, error) {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "Start",
		trace.WithAttributes(attribute.String("repair.id", repairID)),
	)
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRepair(ctx, tx, repairID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRepairNotFound
			}
			return err
		}
		if r.State != domain.RepairPending {
			return ErrInvalidTransition
		}
		now := time.Now().UTC()
		return repo.SetRepairState(ctx, tx, repairID, domain.RepairInProgress, &now, nil)
	})
	if err != nil {
		return nil, err
	}
	return repo.GetRepair(ctx, s.DB, repairID)
}

// Finish moves an in_progress repair to done and stamps EndedAt. When this
// was the car's last unfinished repair the car becomes repaired and its
// repair bay is released in the same transaction.
func (s *RepairService) Finish(ctx context.Context, repairID string) (*domain.Repair, error) {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "Finish",
		trace.WithAttributes(attribute.String("repair.id", repairID)),
	)
	defer span.End()

	var carID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRepair(ctx, tx, repairID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRepairNotFound
			}
			return err
		}
		if r.State != domain.RepairInProgress {
			return ErrInvalidTransition
		}
		now := time.Now().UTC()
		if err := repo.SetRepairState(ctx, tx, repairID, domain.RepairDone, nil, &now); err != nil {
			return err
		}
		carID = r.CarID
		return s.settleCar(ctx, tx, r.CarID)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().
		Str("repair_id", repairID).
		Str("car_id", carID).
		Msg("repair finished")
	return repo.GetRepair(ctx, s.DB, repairID)
}

// settleCar recomputes the car's derived status after a repair-set change and
// reconciles its bay: a car with no remaining active repairs becomes repaired
// and surrenders whatever slot it holds. Runs inside the caller's tx.
func (s *RepairService) settleCar(ctx context.Context, tx *gorm.DB, carID string) error {
	active, err := repo.CountActiveRepairs(ctx, tx, carID)
	if err != nil {
		return err
	}
	if active > 0 {
		return nil // still work to do, bay stays claimed
	}
	repairs, err := repo.ListRepairsByCar(ctx, tx, carID)
	if err != nil {
		return err
	}
	payment, err := repo.GetPaymentByCar(ctx, tx, carID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	status := domain.DeriveCarStatus(repairs, payment)
	if err := repo.UpdateCarStatus(ctx, tx, carID, status); err != nil {
		return err
	}
	return s.Slots.ReleaseByCar(ctx, tx, carID)
}

// Get returns a single repair with its intervention type.
func (s *RepairService) Get(ctx context.Context, repairID string) (*domain.Repair, error) {
	r, err := repo.GetRepair(ctx, s.DB, repairID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRepairNotFound
		}
		return nil, err
	}
	return r, nil
}

// List returns all repairs, optionally filtered by state.
func (s *RepairService) List(ctx context.Context, state string) ([]domain.Repair, error) {
	if state == "" {
		return repo.ListRepairs(ctx, s.DB)
	}
	st, ok := domain.ParseRepairState(state)
	if !ok {
		return nil, ErrInvalidTransition
	}
	return repo.ListRepairsByState(ctx, s.DB, st)
}

// ListByCar returns a car's repairs in creation order.
func (s *RepairService) ListByCar(ctx context.Context, carID string) ([]domain.Repair, error) {
	if _, err := repo.GetCarLean(ctx, s.DB, carID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return repo.ListRepairsByCar(ctx, s.DB, carID)
}

// Delete removes a repair. In-progress repairs cannot be deleted; done
// repairs cannot be removed from a closed (repaired or paid) car. Removing a
// pending repair may leave the car with no active work, in which case its
// status and bay are reconciled like a finish would.
func (s *RepairService) Delete(ctx context.Context, repairID string) error {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("repair.id", repairID)),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRepair(ctx, tx, repairID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRepairNotFound
			}
			return err
		}
		if r.State == domain.RepairInProgress {
			return ErrCannotDeleteActive
		}
		car, err := repo.GetCarLean(ctx, tx, r.CarID)
		if err != nil {
			return err
		}
		if r.State == domain.RepairDone &&
			(car.Status == domain.CarRepaired || car.Status == domain.CarPaid) {
			return ErrCarClosed
		}
		if err := repo.DeleteRepair(ctx, tx, repairID); err != nil {
			return err
		}
		return s.settleCar(ctx, tx, r.CarID)
	})
}
