// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Payment
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CreatePayment inserts the pending, zero-amount payment row that accompanies
// every car. Called inside the car-creation transaction.
func CreatePayment(ctx context.Context, db *gorm.DB, carID string) (*domain.Payment, error) {
	p := &domain.Payment{
		ID:        uuid.NewString(),
		CarID:     carID,
		Amount:    0,
		Status:    domain.PaymentPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// GetPaymentByCar fetches the payment record of carID, or ErrNotFound.
func GetPaymentByCar(ctx context.Context, db *gorm.DB, carID string) (*domain.Payment, error) {
	var p domain.Payment
	if err := db.WithContext(ctx).First(&p, "car_id = ?", carID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaymentPaid finalizes a pending payment: amount, status, and timestamp
// in one update. The WHERE guard on status makes a concurrent double-pay lose
// the row and surface as ErrNotFound.
func MarkPaymentPaid(ctx context.Context, db *gorm.DB, id string, amount float64, paidAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, domain.PaymentPending).
		Updates(map[string]any{
			"amount":  amount,
			"status":  domain.PaymentPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePaymentByCar removes the payment row of a car (cascade path of car
// deletion). Deleting zero rows is not an error here.
func DeletePaymentByCar(ctx context.Context, db *gorm.DB, carID string) error {
	return db.WithContext(ctx).Delete(&domain.Payment{}, "car_id = ?", carID).Error
}
