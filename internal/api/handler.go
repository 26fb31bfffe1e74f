package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"github.com/servicecoinrwb/BAS-System/internal/engine"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *engine.Service
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, eng *engine.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		engine:  eng,
		webpush: webpushOptions,
	}
}
