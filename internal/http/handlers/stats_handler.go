// Reporting HTTP handlers.
//
//   - GET /stats/dashboard   (population, revenue, and occupancy aggregate)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the operator dashboard aggregate.
func (h *Handlers) GetDashboard(c *gin.Context) {
	rep, err := h.statsSvc.Dashboard(c.Request.Context())
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, rep)
}
