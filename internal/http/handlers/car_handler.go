// Car HTTP handlers.
//
// This file exposes REST endpoints for car resources:
//   - POST   /cars               (register, opens the pending payment)
//   - GET    /cars               (list, paginated, ?status= filter, ETag support)
//   - GET    /cars/{id}          (detail with repairs and payment)
//   - PUT    /cars/{id}          (update descriptive fields)
//   - PUT    /cars/{id}/status   (administrative status override)
//   - DELETE /cars/{id}          (delete with cascade)
//   - GET    /cars/status/{status}     (projection by lifecycle status)
//   - GET    /cars/client/{clientId}   (projection by owner)
//
// Billing projections of a car also live here:
//   - GET    /cars/{id}/quote    (current total, recomputed on read)
//   - POST   /cars/{id}/pay      (finalize payment)
//   - GET    /cars/{id}/payment  (payment record)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
	"github.com/tbourn/go-garage-backend/internal/services"
)

// CreateCarRequest is the JSON payload for registering a car.
type CreateCarRequest struct {
	ClientID string `json:"client_id" binding:"required,uuid" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Brand    string `json:"brand" binding:"required,min=1,max=100" example:"Renault"`
	Model    string `json:"model" binding:"required,min=1,max=100" example:"Clio"`
	Plate    string `json:"plate" binding:"required,min=1,max=20" example:"AB-123-CD"`
}

// UpdateCarRequest is the JSON payload for updating a car's descriptive
// fields. Empty fields are left untouched.
type UpdateCarRequest struct {
	Brand string `json:"brand" binding:"omitempty,max=100"`
	Model string `json:"model" binding:"omitempty,max=100"`
	Plate string `json:"plate" binding:"omitempty,max=20"`
}

// OverrideCarStatusRequest force-sets the lifecycle status of a car.
type OverrideCarStatusRequest struct {
	Status string `json:"status" binding:"required" example:"waiting"`
}

// ListCarsResponse wraps a page of cars and pagination information.
type ListCarsResponse struct {
	Cars       []domain.Car `json:"cars"`
	Pagination Pagination   `json:"pagination"`
}

// CreateCar registers a car for an existing client.
func (h *Handlers) CreateCar(c *gin.Context) {
	var req CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	car, err := h.carSvc.Create(c.Request.Context(), req.ClientID, req.Brand, req.Model, req.Plate)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, car)
}

// ListCars returns a page of cars, optionally filtered by ?status=.
// Supports weak ETag via If-None-Match and may return 304 for the
// unfiltered listing.
func (h *Handlers) ListCars(c *gin.Context) {
	ctx := c.Request.Context()
	status := c.Query("status")
	page, pageSize := clampPagination(c)

	// ETag pre-check on the unfiltered listing (best effort).
	if status == "" {
		var db *gorm.DB
		if svc, isConcrete := h.carSvc.(*services.CarService); isConcrete {
			db = svc.DB
		}
		if db != nil {
			count, maxTS, err := repo.CarsStats(ctx, db)
			if err == nil {
				var ts int64
				if maxTS != nil {
					ts = maxTS.Unix()
				}
				etag := fmt.Sprintf(`W/"cars:%d:%d"`, count, ts)
				c.Header("ETag", etag)
				if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	items, total, err := h.carSvc.List(ctx, status, (page-1)*pageSize, pageSize)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListCarsResponse{
		Cars:       items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// GetCar returns a car with its owner, repairs, and payment.
func (h *Handlers) GetCar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	car, err := h.carSvc.Get(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, car)
}

// UpdateCar changes the descriptive fields of a car.
func (h *Handlers) UpdateCar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	var req UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	car, err := h.carSvc.Update(c.Request.Context(), id, req.Brand, req.Model, req.Plate)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, car)
}

// OverrideCarStatus force-sets the lifecycle status of a car. The override
// bypasses derivation and is logged server-side.
func (h *Handlers) OverrideCarStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	var req OverrideCarStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, valid := domain.ParseCarStatus(req.Status); !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of: waiting, in_repair, repaired, paid")
		return
	}
	car, err := h.carSvc.OverrideStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, car)
}

// DeleteCar removes a car, its repairs, and its payment.
func (h *Handlers) DeleteCar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	if err := h.carSvc.Delete(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}

// ListCarsByStatus returns the cars currently in the given lifecycle status.
func (h *Handlers) ListCarsByStatus(c *gin.Context) {
	status := c.Param("status")
	if _, valid := domain.ParseCarStatus(status); !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be one of: waiting, in_repair, repaired, paid")
		return
	}
	page, pageSize := clampPagination(c)
	items, total, err := h.carSvc.List(c.Request.Context(), status, (page-1)*pageSize, pageSize)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListCarsResponse{
		Cars:       items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// ListCarsByClient returns the cars owned by the given client.
func (h *Handlers) ListCarsByClient(c *gin.Context) {
	clientID := c.Param("clientId")
	if _, err := uuid.Parse(clientID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "client id must be a UUID")
		return
	}
	cars, err := h.clientSvc.Cars(c.Request.Context(), clientID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"cars": cars})
}

//
// Billing projections
//

// GetCarQuote returns the current quote of a car.
func (h *Handlers) GetCarQuote(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	q, err := h.billingSvc.Quote(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// PayCar finalizes the car's payment at the quoted amount.
func (h *Handlers) PayCar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	p, err := h.billingSvc.Pay(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetCarPayment returns the payment record of a car.
func (h *Handlers) GetCarPayment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	p, err := h.billingSvc.Payment(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}
