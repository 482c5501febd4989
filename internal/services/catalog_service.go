// Package services – CatalogService
//
// This file implements CatalogService, the read-mostly component over the
// intervention catalog. The garage offers a fixed set of interventions
// seeded at startup; entries referenced by repairs are immutable so that
// historical quotes stay reproducible.

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
)

// CatalogService manages intervention types.
type CatalogService struct {
	DB *gorm.DB
}

// List returns the catalog in its seeded order.
func (s *CatalogService) List(ctx context.Context) ([]domain.InterventionType, error) {
	return repo.ListInterventions(ctx, s.DB)
}

// Get returns a single catalog entry by ID.
func (s *CatalogService) Get(ctx context.Context, id uint) (*domain.InterventionType, error) {
	it, err := repo.GetIntervention(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInterventionNotFound
		}
		return nil, err
	}
	return it, nil
}

// FindOrCreate resolves a catalog entry by name. A missing entry whose name
// belongs to the builtin offering is recreated with its builtin price and
// duration; any other name is rejected.
func (s *CatalogService) FindOrCreate(ctx context.Context, name string) (*domain.InterventionType, error) {
	name = strings.TrimSpace(name)
	it, err := repo.GetInterventionByName(ctx, s.DB, name)
	if err == nil {
		return it, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	def, ok := repo.DefaultCatalogEntry(name)
	if !ok {
		return nil, ErrInterventionNotFound
	}
	created, err := repo.CreateIntervention(ctx, s.DB, def.Name, def.Price, def.DurationSeconds)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Lost a creation race; the row exists now.
			return repo.GetInterventionByName(ctx, s.DB, name)
		}
		return nil, err
	}
	return created, nil
}

// Create adds a custom catalog entry beyond the builtin offering.
func (s *CatalogService) Create(ctx context.Context, name string, price float64, durationSeconds int) (*domain.InterventionType, error) {
	name = strings.TrimSpace(name)
	it, err := repo.CreateIntervention(ctx, s.DB, name, price, durationSeconds)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrInterventionExists
		}
		return nil, err
	}
	return it, nil
}

// Update changes price or duration of an unreferenced catalog entry.
// Entries referenced by any repair are immutable.
func (s *CatalogService) Update(ctx context.Context, id uint, price *float64, durationSeconds *int) (*domain.InterventionType, error) {
	var updated *domain.InterventionType
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetIntervention(ctx, tx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInterventionNotFound
			}
			return err
		}
		refs, err := repo.CountRepairsForIntervention(ctx, tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrInterventionInUse
		}
		fields := map[string]any{}
		if price != nil {
			fields["price"] = *price
		}
		if durationSeconds != nil {
			fields["duration_seconds"] = *durationSeconds
		}
		if len(fields) > 0 {
			if err := repo.UpdateIntervention(ctx, tx, id, fields); err != nil {
				return err
			}
		}
		updated, err = repo.GetIntervention(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an unreferenced catalog entry.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs, err := repo.CountRepairsForIntervention(ctx, tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrInterventionInUse
		}
		if err := repo.DeleteIntervention(ctx, tx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInterventionNotFound
			}
			return err
		}
		return nil
	})
}
