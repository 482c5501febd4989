// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Repair
// model.
//
// State transitions themselves (pending → in_progress → done) are decided by
// the service layer; this file only persists rows and query projections.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CreateRepair inserts a new Repair row in pending state.
func CreateRepair(ctx context.Context, db *gorm.DB, carID string, typeID uint) (*domain.Repair, error) {
	r := &domain.Repair{
		ID:                 uuid.NewString(),
		CarID:              carID,
		InterventionTypeID: typeID,
		State:              domain.RepairPending,
		CreatedAt:          time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRepair fetches a single repair by ID with its intervention type
// preloaded, or ErrNotFound if missing.
func GetRepair(ctx context.Context, db *gorm.DB, id string) (*domain.Repair, error) {
	var r domain.Repair
	err := db.WithContext(ctx).
		Preload("InterventionType").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRepairs returns all repairs, most recent first, with intervention
// types preloaded.
func ListRepairs(ctx context.Context, db *gorm.DB) ([]domain.Repair, error) {
	var out []domain.Repair
	err := db.WithContext(ctx).
		Preload("InterventionType").
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListRepairsByState returns all repairs currently in the given state.
func ListRepairsByState(ctx context.Context, db *gorm.DB, state domain.RepairState) ([]domain.Repair, error) {
	var out []domain.Repair
	err := db.WithContext(ctx).
		Preload("InterventionType").
		Where("state = ?", state).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListRepairsByCar returns every repair belonging to carID in creation order.
func ListRepairsByCar(ctx context.Context, db *gorm.DB, carID string) ([]domain.Repair, error) {
	var out []domain.Repair
	err := db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountActiveRepairs returns the number of pending or in-progress repairs
// for carID. A car with zero active repairs holds no claim on a repair bay.
func CountActiveRepairs(ctx context.Context, db *gorm.DB, carID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Where("car_id = ? AND state IN ?", carID,
			[]domain.RepairState{domain.RepairPending, domain.RepairInProgress}).
		Count(&total).Error
	return total, err
}

// SetRepairState updates the state column plus the relevant timestamp column
// for a repair. startedAt/endedAt may be nil when the transition does not
// touch them. Returns ErrNotFound when no row matched.
func SetRepairState(ctx context.Context, db *gorm.DB, id string, state domain.RepairState, startedAt, endedAt *time.Time) error {
	fields := map[string]any{"state": state}
	if startedAt != nil {
		fields["started_at"] = *startedAt
	}
	if endedAt != nil {
		fields["ended_at"] = *endedAt
	}
	res := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRepair removes a repair row. Returns ErrNotFound when no row matched.
func DeleteRepair(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.Repair{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRepairsByCar removes all repairs for a car (cascade path of car
// deletion). Deleting zero rows is not an error here.
func DeleteRepairsByCar(ctx context.Context, db *gorm.DB, carID string) error {
	return db.WithContext(ctx).Delete(&domain.Repair{}, "car_id = ?", carID).Error
}

// RepairPriceTotal sums the catalog price over all repairs belonging to
// carID, regardless of repair state. Returns 0 when the car has no repairs.
func RepairPriceTotal(ctx context.Context, db *gorm.DB, carID string) (float64, error) {
	var total float64
	err := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Joins("JOIN intervention_types it ON it.id = repairs.intervention_type_id").
		Where("repairs.car_id = ?", carID).
		Select("COALESCE(SUM(it.price), 0)").
		Scan(&total).Error
	return total, err
}

// RepairDurationTotal sums the catalog duration (seconds) over all repairs
// belonging to carID.
func RepairDurationTotal(ctx context.Context, db *gorm.DB, carID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Joins("JOIN intervention_types it ON it.id = repairs.intervention_type_id").
		Where("repairs.car_id = ?", carID).
		Select("COALESCE(SUM(it.duration_seconds), 0)").
		Scan(&total).Error
	return total, err
}
