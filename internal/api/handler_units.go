package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servicecoinrwb/BAS-System/internal/engine"
)

// GetUnits handles GET /api/units: the configured unit inventory as synced
// into the database.
func (h *Handler) GetUnits(c *gin.Context) {
	units, err := h.store.ListUnits(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list units"})
		return
	}
	c.JSON(http.StatusOK, units)
}

type setpointRequest struct {
	Key   string   `json:"key" binding:"required"`
	Value *float64 `json:"value" binding:"required"`
}

// PutSetpoint handles PUT /api/units/{unit_id}/setpoints.
func (h *Handler) PutSetpoint(c *gin.Context) {
	var req setpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.engine.SetSetpoint(c.Request.Context(), c.Param("unit_id"), req.Key, *req.Value)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUnit) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown unit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type overrideRequest struct {
	// Value is a bool for fan/cool/heat, a number for the damper.
	Value any `json:"value"`
}

// PutOverride handles PUT /api/units/{unit_id}/overrides/{output}.
func (h *Handler) PutOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required; use DELETE to release an override"})
		return
	}

	err := h.engine.SetOverride(c.Request.Context(), c.Param("unit_id"), c.Param("output"), req.Value)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUnit) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown unit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteOverride handles DELETE /api/units/{unit_id}/overrides/{output}.
func (h *Handler) DeleteOverride(c *gin.Context) {
	err := h.engine.SetOverride(c.Request.Context(), c.Param("unit_id"), c.Param("output"), nil)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUnit) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown unit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
