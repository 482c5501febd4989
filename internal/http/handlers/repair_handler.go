// Repair HTTP handlers.
//
// This file exposes REST endpoints for the repair workflow:
//   - POST   /cars/{id}/repairs     (register, may claim a repair slot)
//   - GET    /cars/{id}/repairs     (car's repairs, creation order)
//   - GET    /repairs               (list, ?state= filter)
//   - GET    /repairs/state/{state} (projection by workflow state)
//   - GET    /repairs/{id}          (detail)
//   - PUT    /repairs/{id}/start    (pending -> in_progress)
//   - PUT    /repairs/{id}/finish   (in_progress -> done, may free the slot)
//   - DELETE /repairs/{id}          (delete, blocked while in progress)
//
// POST /cars/{id}/repairs honors the Idempotency-Key header: a replayed key
// returns the previously created repair instead of registering a second one.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
	"github.com/tbourn/go-garage-backend/internal/services"
)

// CreateRepairRequest is the JSON payload for registering a repair. The
// intervention is referenced either by its catalog ID or by its name;
// exactly one of the two must be set.
type CreateRepairRequest struct {
	InterventionTypeID   uint   `json:"intervention_type_id" binding:"omitempty,min=1" example:"1"`
	InterventionTypeName string `json:"intervention_type" binding:"omitempty,min=1" example:"Oil Change"`
}

// ListRepairsResponse wraps a repair listing.
type ListRepairsResponse struct {
	Repairs []domain.Repair `json:"repairs"`
}

// CreateRepair registers a repair for a car. The car must hold or claim a
// repair slot; when both are occupied the request is declined with 409 and
// nothing changes. The intervention may be referenced by catalog ID or by
// name; an unknown builtin name is recreated through the catalog.
//
// Supports idempotency via the Idempotency-Key header (same key → same
// repair, with Idempotency-Replayed: true on the replay).
func (h *Handlers) CreateRepair(c *gin.Context) {
	ctx := c.Request.Context()
	carID := c.Param("id")
	if _, err := uuid.Parse(carID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	var req CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if (req.InterventionTypeID == 0) == (req.InterventionTypeName == "") {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provide exactly one of intervention_type_id or intervention_type")
		return
	}
	typeID := req.InterventionTypeID
	if typeID == 0 {
		it, err := h.catalogSvc.FindOrCreate(ctx, req.InterventionTypeName)
		if err != nil {
			failFromErr(c, err)
			return
		}
		typeID = it.ID
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := idempotencyKeyFrom(c)
	if idemKey != "" {
		if svc, isConcrete := h.repairSvc.(*services.RepairService); isConcrete && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, carID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetRepair(ctx, svc.DB, rec.RepairID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, prev)
					return
				}
			}
		}
	}

	r, err := h.repairSvc.Create(ctx, carID, typeID)
	if err != nil {
		failFromErr(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, isConcrete := h.repairSvc.(*services.RepairService); isConcrete && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, carID, idemKey, r.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, r)
}

// idempotencyKeyFrom extracts an idempotency key if an upstream middleware
// validated one; it falls back to reading the "Idempotency-Key" header
// directly when no dedicated middleware is mounted.
func idempotencyKeyFrom(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}

// ListCarRepairs returns a car's repairs in creation order.
func (h *Handlers) ListCarRepairs(c *gin.Context) {
	carID := c.Param("id")
	if _, err := uuid.Parse(carID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car id must be a UUID")
		return
	}
	items, err := h.repairSvc.ListByCar(c.Request.Context(), carID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListRepairsResponse{Repairs: items})
}

// ListRepairs returns all repairs, optionally filtered by ?state=.
func (h *Handlers) ListRepairs(c *gin.Context) {
	state := c.Query("state")
	if state != "" {
		if _, valid := domain.ParseRepairState(state); !valid {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "state must be one of: pending, in_progress, done")
			return
		}
	}
	items, err := h.repairSvc.List(c.Request.Context(), state)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListRepairsResponse{Repairs: items})
}

// ListRepairsByState returns the repairs currently in the given state.
func (h *Handlers) ListRepairsByState(c *gin.Context) {
	state := c.Param("state")
	if _, valid := domain.ParseRepairState(state); !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "state must be one of: pending, in_progress, done")
		return
	}
	items, err := h.repairSvc.List(c.Request.Context(), state)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListRepairsResponse{Repairs: items})
}

// GetRepair returns a single repair with its intervention type.
func (h *Handlers) GetRepair(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}
	r, err := h.repairSvc.Get(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// StartRepair moves a pending repair to in_progress.
func (h *Handlers) StartRepair(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}
	r, err := h.repairSvc.Start(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// FinishRepair moves an in_progress repair to done. Finishing the car's last
// unfinished repair flips the car to repaired and frees its slot.
func (h *Handlers) FinishRepair(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}
	r, err := h.repairSvc.Finish(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// DeleteRepair removes a repair that is not in progress.
func (h *Handlers) DeleteRepair(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}
	if err := h.repairSvc.Delete(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}
