// Client HTTP handlers.
//
// This file exposes REST endpoints for client resources:
//   - POST   /clients            (create)
//   - GET    /clients            (list, paginated)
//   - GET    /clients/{id}       (detail)
//   - GET    /clients/{id}/cars  (owned cars)
//   - PUT    /clients/{id}       (update)
//   - DELETE /clients/{id}       (delete, blocked while cars remain)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CreateClientRequest is the JSON payload for registering a client.
type CreateClientRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100" example:"Ada"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100" example:"Lovelace"`
	Phone     string `json:"phone" binding:"omitempty,max=30" example:"+33612345678"`
	Email     string `json:"email" binding:"required,email" example:"ada@example.com"`
}

// UpdateClientRequest is the JSON payload for updating a client. All fields
// are optional; empty fields are left untouched.
type UpdateClientRequest struct {
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
	Email     string `json:"email" binding:"omitempty,email"`
}

// ListClientsResponse wraps a page of clients and pagination information.
type ListClientsResponse struct {
	Clients    []domain.Client `json:"clients"`
	Pagination Pagination      `json:"pagination"`
}

// CreateClient registers a new client.
func (h *Handlers) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cl, err := h.clientSvc.Create(c.Request.Context(), req.FirstName, req.LastName, req.Phone, req.Email)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cl)
}

// ListClients returns a page of clients.
func (h *Handlers) ListClients(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.clientSvc.List(c.Request.Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListClientsResponse{
		Clients:    items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// GetClient returns a single client.
func (h *Handlers) GetClient(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}
	cl, err := h.clientSvc.Get(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, cl)
}

// ListClientCars returns every car owned by a client.
func (h *Handlers) ListClientCars(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}
	cars, err := h.clientSvc.Cars(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"cars": cars})
}

// UpdateClient changes the contact fields of a client.
func (h *Handlers) UpdateClient(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cl, err := h.clientSvc.Update(c.Request.Context(), id, req.FirstName, req.LastName, req.Phone, req.Email)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, cl)
}

// DeleteClient removes a client without cars.
func (h *Handlers) DeleteClient(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}
	if err := h.clientSvc.Delete(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}
