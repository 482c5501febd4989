// Intervention catalog HTTP handlers.
//
//   - GET    /interventions        (catalog in seeded order)
//   - GET    /interventions/{id}   (single entry)
//   - POST   /interventions        (add a custom entry)
//   - PUT    /interventions/{id}   (update, blocked while referenced)
//   - DELETE /interventions/{id}   (delete, blocked while referenced)
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// CreateInterventionRequest is the JSON payload for adding a catalog entry.
type CreateInterventionRequest struct {
	Name            string  `json:"name" binding:"required,min=1,max=100" example:"Windshield"`
	Price           float64 `json:"price" binding:"required,gt=0" example:"240"`
	DurationSeconds int     `json:"duration_seconds" binding:"required,gt=0" example:"3600"`
}

// UpdateInterventionRequest changes price or duration of a catalog entry.
// Omitted fields are left untouched.
type UpdateInterventionRequest struct {
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	DurationSeconds *int     `json:"duration_seconds" binding:"omitempty,gt=0"`
}

// InterventionView is the catalog entry projection with the human-readable
// duration label.
type InterventionView struct {
	domain.InterventionType
	Duration string `json:"duration"`
}

func interventionView(it domain.InterventionType) InterventionView {
	return InterventionView{InterventionType: it, Duration: it.DurationLabel()}
}

// interventionID parses the numeric catalog path parameter.
func interventionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "intervention id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// ListInterventions returns the catalog in its seeded order.
func (h *Handlers) ListInterventions(c *gin.Context) {
	items, err := h.catalogSvc.List(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	views := make([]InterventionView, 0, len(items))
	for _, it := range items {
		views = append(views, interventionView(it))
	}
	ok(c, http.StatusOK, gin.H{"interventions": views})
}

// GetIntervention returns a single catalog entry.
func (h *Handlers) GetIntervention(c *gin.Context) {
	id, valid := interventionID(c)
	if !valid {
		return
	}
	it, err := h.catalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, interventionView(*it))
}

// CreateIntervention adds a custom catalog entry.
func (h *Handlers) CreateIntervention(c *gin.Context) {
	var req CreateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	it, err := h.catalogSvc.Create(c.Request.Context(), req.Name, req.Price, req.DurationSeconds)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, interventionView(*it))
}

// UpdateIntervention changes price or duration of an unreferenced entry.
func (h *Handlers) UpdateIntervention(c *gin.Context) {
	id, valid := interventionID(c)
	if !valid {
		return
	}
	var req UpdateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	it, err := h.catalogSvc.Update(c.Request.Context(), id, req.Price, req.DurationSeconds)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, interventionView(*it))
}

// DeleteIntervention removes an unreferenced catalog entry.
func (h *Handlers) DeleteIntervention(c *gin.Context) {
	id, valid := interventionID(c)
	if !valid {
		return
	}
	if err := h.catalogSvc.Delete(c.Request.Context(), id); err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}
