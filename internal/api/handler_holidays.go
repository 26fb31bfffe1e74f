package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/servicecoinrwb/BAS-System/internal/store"
)

type holidayRequest struct {
	Name string `json:"name"`
}

// GetHolidays handles GET /api/holidays.
func (h *Handler) GetHolidays(c *gin.Context) {
	holidays, err := h.store.ListHolidays(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list holidays"})
		return
	}
	c.JSON(http.StatusOK, holidays)
}

// PutHoliday handles PUT /api/holidays/{date} with date as YYYY-MM-DD.
func (h *Handler) PutHoliday(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.PutHoliday(c.Request.Context(), date, req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save holiday"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteHoliday handles DELETE /api/holidays/{date}.
func (h *Handler) DeleteHoliday(c *gin.Context) {
	if err := h.store.DeleteHoliday(c.Request.Context(), c.Param("date")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "holiday not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete holiday"})
		return
	}
	c.Status(http.StatusNoContent)
}
