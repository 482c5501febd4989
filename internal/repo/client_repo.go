// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Client
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CreateClient inserts a new Client row. A duplicate email is reported as
// ErrDuplicate.
func CreateClient(ctx context.Context, db *gorm.DB, firstName, lastName, phone, email string) (*domain.Client, error) {
	c := &domain.Client{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Email:     email,
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

// GetClient fetches a single client by ID, or ErrNotFound if missing.
func GetClient(ctx context.Context, db *gorm.DB, id string) (*domain.Client, error) {
	var c domain.Client
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountClients returns the total number of clients.
func CountClients(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Client{}).Count(&total).Error
	return total, err
}

// ListClientsPage returns a paginated slice of clients ordered by creation
// time descending.
func ListClientsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Client, error) {
	var out []domain.Client
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateClientFields applies the given column updates to a client. Returns
// ErrNotFound when no row matched, ErrDuplicate on an email collision.
func UpdateClientFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Client{}).
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

// DeleteClient removes a client row. The caller is responsible for ensuring
// no cars reference the client first.
func DeleteClient(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountCarsByClient returns how many cars a client currently owns.
func CountCarsByClient(ctx context.Context, db *gorm.DB, clientID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Car{}).
		Where("client_id = ?", clientID).
		Count(&total).Error
	return total, err
}
