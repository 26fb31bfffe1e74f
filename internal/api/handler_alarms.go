package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// GetAlarms handles GET /api/alarms. Query params: unit (filter),
// include_cleared (default false), limit.
func (h *Handler) GetAlarms(c *gin.Context) {
	includeCleared := c.Query("include_cleared") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.store.ListAlarms(c.Request.Context(), c.Query("unit"), includeCleared, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alarms"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// AckAlarm handles POST /api/alarms/{id}/ack.
func (h *Handler) AckAlarm(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alarm id"})
		return
	}

	if err := h.store.AckAlarm(c.Request.Context(), id, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alarm not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to acknowledge alarm"})
		return
	}
	c.Status(http.StatusNoContent)
}
