package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/servicecoinrwb/BAS-System/config"
	"github.com/servicecoinrwb/BAS-System/internal/engine"
	"github.com/servicecoinrwb/BAS-System/internal/metrics"
	"github.com/servicecoinrwb/BAS-System/internal/mw"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, eng *engine.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, eng, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/status", handler.GetStatus)
		api.POST("/estop", handler.SetEmergencyStop)

		api.GET("/units", handler.GetUnits)
		api.GET("/units/:unit_id", handler.GetUnit)
		api.PUT("/units/:unit_id/setpoints", handler.PutSetpoint)
		api.PUT("/units/:unit_id/overrides/:output", handler.PutOverride)
		api.DELETE("/units/:unit_id/overrides/:output", handler.DeleteOverride)
		api.GET("/units/:unit_id/trends", caching, handler.GetTrends)

		api.GET("/alarms", handler.GetAlarms)
		api.POST("/alarms/:id/ack", handler.AckAlarm)

		api.GET("/schedules", handler.GetSchedules)
		api.PUT("/schedules/:name", handler.PutSchedule)
		api.DELETE("/schedules/:name", handler.DeleteSchedule)

		api.GET("/holidays", handler.GetHolidays)
		api.PUT("/holidays/:date", handler.PutHoliday)
		api.DELETE("/holidays/:date", handler.DeleteHoliday)

		api.GET("/logs", handler.GetLogs)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
