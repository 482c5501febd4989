// Package services – CarService
//
// This file implements CarService, the owner of the car lifecycle. A car is
// created together with its pending payment record; its status is normally
// derived from its repairs and payment, with a logged administrative
// override for corrections. Deleting a car cascades over its repairs and
// payment and frees any bay it holds, all in one transaction.

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CarService coordinates car rows, their payment shadow, and slot cleanup.
type CarService struct {
	DB    *gorm.DB
	Slots *SlotService
}

// Create registers a car for an existing client and opens its pending
// payment in the same transaction. Plates are unique garage-wide.
func (s *CarService) Create(ctx context.Context, clientID, brand, model, plate string) (*domain.Car, error) {
	tr := otel.Tracer("services/CarService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("client.id", clientID)),
	)
	defer span.End()

	brand = strings.TrimSpace(brand)
	model = strings.TrimSpace(model)
	plate = strings.TrimSpace(plate)

	var created *domain.Car
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetClient(ctx, tx, clientID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		c, err := repo.CreateCar(ctx, tx, clientID, brand, model, plate)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrPlateTaken
			}
			return err
		}
		if _, err := repo.CreatePayment(ctx, tx, c.ID); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo.GetCar(ctx, s.DB, created.ID)
}

// Get returns a car with its owner, repairs, and payment.
func (s *CarService) Get(ctx context.Context, carID string) (*domain.Car, error) {
	c, err := repo.GetCar(ctx, s.DB, carID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns a page of cars plus the total row count, optionally filtered
// by status. Filtered listings are not paginated (the fleet per status is
// small by construction).
func (s *CarService) List(ctx context.Context, status string, offset, limit int) ([]domain.Car, int64, error) {
	if status != "" {
		st, ok := domain.ParseCarStatus(status)
		if !ok {
			return nil, 0, ErrCarNotFound
		}
		cars, err := repo.ListCarsByStatus(ctx, s.DB, st)
		if err != nil {
			return nil, 0, err
		}
		return cars, int64(len(cars)), nil
	}
	total, err := repo.CountCars(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	cars, err := repo.ListCarsPage(ctx, s.DB, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// Update changes the descriptive fields of a car (brand, model, plate).
// Empty arguments leave the column untouched. Lifecycle status is not
// updatable here; use OverrideStatus.
func (s *CarService) Update(ctx context.Context, carID string, brand, model, plate string) (*domain.Car, error) {
	fields := map[string]any{}
	if v := strings.TrimSpace(brand); v != "" {
		fields["brand"] = v
	}
	if v := strings.TrimSpace(model); v != "" {
		fields["model"] = v
	}
	if v := strings.TrimSpace(plate); v != "" {
		fields["plate"] = v
	}
	if len(fields) > 0 {
		if err := repo.UpdateCarFields(ctx, s.DB, carID, fields); err != nil {
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return nil, ErrCarNotFound
			case errors.Is(err, repo.ErrDuplicate):
				return nil, ErrPlateTaken
			default:
				return nil, err
			}
		}
	}
	return s.Get(ctx, carID)
}

// OverrideStatus force-sets the lifecycle status of a car, bypassing
// derivation. This is an administrative correction tool; every use is
// logged at warn level. It never touches repairs, payment, or slots.
func (s *CarService) OverrideStatus(ctx context.Context, carID, status string) (*domain.Car, error) {
	st, ok := domain.ParseCarStatus(status)
	if !ok {
		return nil, ErrInvalidTransition
	}
	if err := repo.UpdateCarStatus(ctx, s.DB, carID, st); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	log.Ctx(ctx).Warn().
		Str("car_id", carID).
		Str("status", string(st)).
		Msg("car status overridden")
	return s.Get(ctx, carID)
}

// Delete removes a car, its repairs, and its payment, and frees any bay it
// holds. In-progress work blocks deletion.
func (s *CarService) Delete(ctx context.Context, carID string) error {
	tr := otel.Tracer("services/CarService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("car.id", carID)),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetCarLean(ctx, tx, carID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCarNotFound
			}
			return err
		}
		repairs, err := repo.ListRepairsByCar(ctx, tx, carID)
		if err != nil {
			return err
		}
		for _, r := range repairs {
			if r.State == domain.RepairInProgress {
				return ErrCannotDeleteActive
			}
		}
		if err := s.Slots.ReleaseByCar(ctx, tx, carID); err != nil {
			return err
		}
		if err := repo.DeleteRepairsByCar(ctx, tx, carID); err != nil {
			return err
		}
		if err := repo.DeletePaymentByCar(ctx, tx, carID); err != nil {
			return err
		}
		return repo.DeleteCar(ctx, tx, carID)
	})
}
