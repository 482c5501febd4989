// Slot HTTP handlers.
//
// This file exposes REST endpoints for the bay inventory:
//   - GET  /slots                 (full inventory with occupants)
//   - GET  /slots/report          (occupancy aggregate)
//   - GET  /slots/{id}            (single slot)
//   - PUT  /slots/{id}/occupy     (administrative bind)
//   - PUT  /slots/{id}/release    (administrative free)
//
// The occupy/release endpoints are correction tools; the normal path binds
// and frees slots automatically through the repair workflow.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// OccupySlotRequest binds a car to a specific slot.
type OccupySlotRequest struct {
	CarID string `json:"car_id" binding:"required,uuid" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// ListSlotsResponse wraps the slot inventory.
type ListSlotsResponse struct {
	Slots []domain.Slot `json:"slots"`
}

// slotID parses the numeric slot path parameter.
func slotID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "slot id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// ListSlots returns the full inventory in ID order.
func (h *Handlers) ListSlots(c *gin.Context) {
	items, err := h.slotSvc.List(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListSlotsResponse{Slots: items})
}

// SlotReport returns the occupancy aggregate.
func (h *Handlers) SlotReport(c *gin.Context) {
	rep, err := h.slotSvc.Report(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, rep)
}

// GetSlot returns a single slot with its occupant.
func (h *Handlers) GetSlot(c *gin.Context) {
	id, valid := slotID(c)
	if !valid {
		return
	}
	slot, err := h.slotSvc.Get(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, slot)
}

// OccupySlot binds a car to a specific free slot and aligns the car status
// with the slot kind.
func (h *Handlers) OccupySlot(c *gin.Context) {
	id, valid := slotID(c)
	if !valid {
		return
	}
	var req OccupySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if _, err := uuid.Parse(req.CarID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "car_id must be a UUID")
		return
	}
	slot, err := h.slotSvc.Occupy(c.Request.Context(), id, req.CarID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, slot)
}

// ReleaseSlot frees a specific slot and parks the former occupant back in
// waiting status.
func (h *Handlers) ReleaseSlot(c *gin.Context) {
	id, valid := slotID(c)
	if !valid {
		return
	}
	slot, err := h.slotSvc.ReleaseManual(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, slot)
}
