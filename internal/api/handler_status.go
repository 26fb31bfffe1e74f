package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servicecoinrwb/BAS-System/internal/engine"
)

// GetStatus handles GET /api/status: the emergency-stop state plus every
// unit's live scan result.
func (h *Handler) GetStatus(c *gin.Context) {
	estop, units := h.engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"emergency_stop": estop,
		"units":          units,
	})
}

// GetUnit handles GET /api/units/{unit_id}.
func (h *Handler) GetUnit(c *gin.Context) {
	status, err := h.engine.Unit(c.Param("unit_id"))
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUnit) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown unit"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

type estopRequest struct {
	Asserted *bool `json:"asserted" binding:"required"`
}

// SetEmergencyStop handles POST /api/estop.
func (h *Handler) SetEmergencyStop(c *gin.Context) {
	var req estopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.engine.SetEmergencyStop(c.Request.Context(), *req.Asserted)
	c.JSON(http.StatusOK, gin.H{"emergency_stop": *req.Asserted})
}
