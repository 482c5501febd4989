// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// InterventionType catalog.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CreateIntervention inserts a new catalog entry. A duplicate name is
// reported as ErrDuplicate.
func CreateIntervention(ctx context.Context, db *gorm.DB, name string, price float64, durationSeconds int) (*domain.InterventionType, error) {
	it := &domain.InterventionType{
		Name:            name,
		Price:           price,
		DurationSeconds: durationSeconds,
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return it, nil
}

// ListInterventions returns the catalog in insertion order (the seeded
// default order).
func ListInterventions(ctx context.Context, db *gorm.DB) ([]domain.InterventionType, error) {
	var out []domain.InterventionType
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// GetIntervention fetches a catalog entry by ID, or ErrNotFound.
func GetIntervention(ctx context.Context, db *gorm.DB, id uint) (*domain.InterventionType, error) {
	var it domain.InterventionType
	if err := db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// GetInterventionByName fetches a catalog entry by its unique name, or
// ErrNotFound.
func GetInterventionByName(ctx context.Context, db *gorm.DB, name string) (*domain.InterventionType, error) {
	var it domain.InterventionType
	if err := db.WithContext(ctx).First(&it, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateIntervention applies the given column updates to a catalog entry.
// The immutable-while-referenced rule is enforced by the service layer.
func UpdateIntervention(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.InterventionType{}).
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

// DeleteIntervention removes a catalog entry. Returns ErrNotFound when no
// row matched.
func DeleteIntervention(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.InterventionType{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountRepairsForIntervention returns how many repairs reference a catalog
// entry. Used as the referential guard before update/delete.
func CountRepairsForIntervention(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Where("intervention_type_id = ?", id).
		Count(&total).Error
	return total, err
}
