package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servicecoinrwb/BAS-System/internal/model"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// scheduleDayRequest is one weekday window in a schedule write.
type scheduleDayRequest struct {
	Weekday     int  `json:"weekday"`
	Enabled     bool `json:"enabled"`
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`
}

type scheduleRequest struct {
	Days []scheduleDayRequest `json:"days" binding:"required"`
}

// GetSchedules handles GET /api/schedules.
func (h *Handler) GetSchedules(c *gin.Context) {
	scheds, err := h.store.ListSchedules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}
	c.JSON(http.StatusOK, scheds)
}

// PutSchedule handles PUT /api/schedules/{name}, replacing the whole week.
func (h *Handler) PutSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched := &model.Schedule{Name: c.Param("name")}
	for _, d := range req.Days {
		if d.Weekday < 0 || d.Weekday > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be within 0..6"})
			return
		}
		if d.StartMinute < 0 || d.EndMinute > 24*60 || d.StartMinute > d.EndMinute {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window minutes must satisfy 0 <= start <= end <= 1440"})
			return
		}
		sched.Days = append(sched.Days, model.ScheduleDay{
			Weekday:     d.Weekday,
			Enabled:     d.Enabled,
			StartMinute: d.StartMinute,
			EndMinute:   d.EndMinute,
		})
	}

	if err := h.store.SaveSchedule(c.Request.Context(), sched); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save schedule"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSchedule handles DELETE /api/schedules/{name}.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	if err := h.store.DeleteSchedule(c.Request.Context(), c.Param("name")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete schedule"})
		return
	}
	c.Status(http.StatusNoContent)
}
