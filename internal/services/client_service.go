// Package services – ClientService
//
// CRUD over garage clients. Thin by design: the only business rules here are
// the unique email and the ban on deleting a client that still owns cars.

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
)

// ClientService manages the client roster.
type ClientService struct {
	DB *gorm.DB
}

// Create registers a new client.
func (s *ClientService) Create(ctx context.Context, firstName, lastName, phone, email string) (*domain.Client, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))

	c, err := repo.CreateClient(ctx, s.DB, firstName, lastName, phone, email)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return c, nil
}

// Get returns a single client.
func (s *ClientService) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	c, err := repo.GetClient(ctx, s.DB, clientID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns a page of clients plus the total row count.
func (s *ClientService) List(ctx context.Context, offset, limit int) ([]domain.Client, int64, error) {
	total, err := repo.CountClients(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	clients, err := repo.ListClientsPage(ctx, s.DB, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// Cars returns every car the client owns, with repairs preloaded.
func (s *ClientService) Cars(ctx context.Context, clientID string) ([]domain.Car, error) {
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	return repo.ListCarsByClient(ctx, s.DB, clientID)
}

// Update changes the contact fields of a client. Empty arguments leave the
// column untouched.
func (s *ClientService) Update(ctx context.Context, clientID string, firstName, lastName, phone, email string) (*domain.Client, error) {
	fields := map[string]any{}
	if v := strings.TrimSpace(firstName); v != "" {
		fields["first_name"] = v
	}
	if v := strings.TrimSpace(lastName); v != "" {
		fields["last_name"] = v
	}
	if v := strings.TrimSpace(phone); v != "" {
		fields["phone"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(email)); v != "" {
		fields["email"] = v
	}
	if len(fields) > 0 {
		if err := repo.UpdateClientFields(ctx, s.DB, clientID, fields); err != nil {
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return nil, ErrClientNotFound
			case errors.Is(err, repo.ErrDuplicate):
				return nil, ErrEmailTaken
			default:
				return nil, err
			}
		}
	}
	return s.Get(ctx, clientID)
}

// Delete removes a client. Clients that still own cars cannot be deleted;
// remove or reassign the cars first.
func (s *ClientService) Delete(ctx context.Context, clientID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned, err := repo.CountCarsByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if owned > 0 {
			return ErrClientHasCars
		}
		if err := repo.DeleteClient(ctx, tx, clientID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		return nil
	})
}
