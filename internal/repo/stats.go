// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) and the dashboard projection.
// Each function is context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CarsStats returns aggregate metadata for the car listing: the total number
// of rows and the maximum UpdatedAt timestamp among those rows.
//
// When there are no cars, the returned count is 0 and maxUpdatedAt is nil.
func CarsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Car{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CarStatusCounts returns the number of cars per status.
func CarStatusCounts(ctx context.Context, db *gorm.DB) (map[domain.CarStatus]int64, error) {
	var rows []struct {
		Status domain.CarStatus
		Total  int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Car{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.CarStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// RepairStateCounts returns the number of repairs per state.
func RepairStateCounts(ctx context.Context, db *gorm.DB) (map[domain.RepairState]int64, error) {
	var rows []struct {
		State domain.RepairState
		Total int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Select("state, COUNT(*) AS total").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RepairState]int64, len(rows))
	for _, r := range rows {
		out[r.State] = r.Total
	}
	return out, nil
}

// RevenueTotal sums the amount of all finalized payments.
func RevenueTotal(ctx context.Context, db *gorm.DB) (float64, error) {
	var total float64
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("status = ?", domain.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
