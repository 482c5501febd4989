// Package services – BillingService
//
// This file implements BillingService, which owns quoting and payment. A
// quote is the sum of the catalog prices of every repair registered on the
// car, computed on read and never stored until payment. Pay finalizes the
// car's pending payment at the quoted amount and flips the car to paid, in
// one transaction guarded against double-pays.

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

// Quote is the billing projection of a car: the total owed and the expected
// workshop time, both summed over the car's registered repairs.
type Quote struct {
	CarID           string  `json:"car_id"`
	Total           float64 `json:"total"`
	DurationSeconds int64   `json:"duration_seconds"`
	RepairCount     int     `json:"repair_count"`
}

// BillingService computes quotes and finalizes payments.
type BillingService struct {
	DB *gorm.DB
}

// Quote returns the current quote of a car. The amount is recomputed from
// the catalog on every call; it only freezes into the payment row at Pay.
func (s *BillingService) Quote(ctx context.Context, carID string) (*Quote, error) {
	if _, err := repo.GetCarLean(ctx, s.DB, carID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	repairs, err := repo.ListRepairsByCar(ctx, s.DB, carID)
	if err != nil {
		return nil, err
	}
	total, err := repo.RepairPriceTotal(ctx, s.DB, carID)
	if err != nil {
		return nil, err
	}
	duration, err := repo.RepairDurationTotal(ctx, s.DB, carID)
	if err != nil {
		return nil, err
	}
	return &Quote{
		CarID:           carID,
		Total:           total,
		DurationSeconds: duration,
		RepairCount:     len(repairs),
	}, nil
}

// Pay finalizes the car's payment. The car must be repaired (every repair
// done, nothing pending); the amount is the quote total at the moment of
// payment. A second Pay fails with ErrAlreadyPaid and changes nothing.
func (s *BillingService) Pay(ctx context.Context, carID string) (*domain.Payment, error) {
	tr := otel.Tracer("services/BillingService")
	ctx, span := tr.Start(ctx, "Pay",
		trace.WithAttributes(attribute.String("car.id", carID)),
	)
	defer span.End()

	var paymentID string
	var amount float64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		car, err := repo.GetCarLean(ctx, tx, carID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCarNotFound
			}
			return err
		}
		if car.Status == domain.CarPaid {
			return ErrAlreadyPaid
		}
		if car.Status != domain.CarRepaired {
			return ErrCarNotReady
		}

		p, err := repo.GetPaymentByCar(ctx, tx, carID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if p.Status == domain.PaymentPaid {
			return ErrAlreadyPaid
		}

		amount, err = repo.RepairPriceTotal(ctx, tx, carID)
		if err != nil {
			return err
		}
		if err := repo.MarkPaymentPaid(ctx, tx, p.ID, amount, time.Now().UTC()); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// Lost the status guard to a concurrent pay.
				return ErrAlreadyPaid
			}
			return err
		}
		paymentID = p.ID
		return repo.UpdateCarStatus(ctx, tx, carID, domain.CarPaid)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().
		Str("car_id", carID).
		Str("payment_id", paymentID).
		Float64("amount", amount).
		Msg("payment finalized")
	return repo.GetPaymentByCar(ctx, s.DB, carID)
}

// Payment returns the payment record of a car.
func (s *BillingService) Payment(ctx context.Context, carID string) (*domain.Payment, error) {
	if _, err := repo.GetCarLean(ctx, s.DB, carID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	p, err := repo.GetPaymentByCar(ctx, s.DB, carID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

// Revenue sums all finalized payments.
func (s *BillingService) Revenue(ctx context.Context) (float64, error) {
	return repo.RevenueTotal(ctx, s.DB)
}
