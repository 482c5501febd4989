// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Car model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a car is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-constraint violations (duplicate plate) surface as ErrDuplicate.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation (duplicate plate,
// email, catalog name, or idempotency key).
var ErrDuplicate = errors.New("duplicate")

// IsDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey. glebarez/sqlite often returns plain-text
// errors for UNIQUE violations.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: unique") ||
		strings.Contains(msg, "duplicate key")
}

// CreateCar inserts a new Car row in waiting status. The car ID is a randomly
// generated UUID (string), and CreatedAt is set to UTC. A duplicate plate is
// reported as ErrDuplicate.
func CreateCar(ctx context.Context, db *gorm.DB, clientID, brand, model, plate string) (*domain.Car, error) {
	c := &domain.Car{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Brand:     brand,
		Model:     model,
		Plate:     plate,
		Status:    domain.CarWaiting,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetCar fetches a single car by ID with its repairs (and their intervention
// types) and payment preloaded. Returns ErrNotFound if missing.
func GetCar(ctx context.Context, db *gorm.DB, id string) (*domain.Car, error) {
	var c domain.Car
	err := db.WithContext(ctx).
		Preload("Client").
		Preload("Repairs", func(q *gorm.DB) *gorm.DB { return q.Order("created_at asc") }).
		Preload("Repairs.InterventionType").
		Preload("Payment").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCarLean fetches a car row without associations. Intended for use inside
// transactions that only need the status/identity columns.
func GetCarLean(ctx context.Context, db *gorm.DB, id string) (*domain.Car, error) {
	var c domain.Car
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCars returns the total number of cars.
func CountCars(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Car{}).Count(&total).Error
	return total, err
}

// ListCarsPage returns a paginated slice of cars ordered by creation time
// descending, with owner and payment preloaded. Use CountCars to obtain the
// total for pagination metadata.
func ListCarsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Car, error) {
	var out []domain.Car
	err := db.WithContext(ctx).
		Preload("Client").
		Preload("Payment").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListCarsByStatus returns all cars currently in the given status, most
// recent first.
func ListCarsByStatus(ctx context.Context, db *gorm.DB, status domain.CarStatus) ([]domain.Car, error) {
	var out []domain.Car
	err := db.WithContext(ctx).
		Preload("Client").
		Where("status = ?", status).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListCarsByClient returns all cars owned by clientID with repairs preloaded.
func ListCarsByClient(ctx context.Context, db *gorm.DB, clientID string) ([]domain.Car, error) {
	var out []domain.Car
	err := db.WithContext(ctx).
		Preload("Repairs.InterventionType").
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdateCarFields applies the given column updates to a car. Returns
// ErrNotFound when no row matched, ErrDuplicate on a plate collision.
func UpdateCarFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Car{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		if IsDuplicate(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCarStatus sets the status column of a car. Returns ErrNotFound when
// the car does not exist.
func UpdateCarStatus(ctx context.Context, db *gorm.DB, id string, status domain.CarStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Car{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCar removes a car row. Associated repairs and the payment are deleted
// by the caller inside the same transaction.
func DeleteCar(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.Car{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
