package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/guide"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/resilience"
	"github.com/kbukum/guidegen/sse"
	"github.com/kbukum/guidegen/weather"
)

// Dependencies are the services behind the HTTP API.
type Dependencies struct {
	Guides   *guide.Service
	Hub      *sse.Hub
	Resolver *geocode.Resolver
	Advisor  *weather.Advisor
	Limits   *resilience.Registry
	Log      *logger.Logger
}

// Handler serves the guide API.
type Handler struct {
	guides   *guide.Service
	hub      *sse.Hub
	resolver *geocode.Resolver
	advisor  *weather.Advisor
	limits   *resilience.Registry
	log      *logger.Logger
}

// New validates deps and returns a handler.
func New(deps Dependencies) (*Handler, error) {
	switch {
	case deps.Guides == nil:
		return nil, errors.New("api: guide service is required")
	case deps.Hub == nil:
		return nil, errors.New("api: stream hub is required")
	case deps.Resolver == nil:
		return nil, errors.New("api: resolver is required")
	case deps.Advisor == nil:
		return nil, errors.New("api: advisor is required")
	case deps.Limits == nil:
		return nil, errors.New("api: limiter registry is required")
	}
	if deps.Log == nil {
		deps.Log = logger.WithComponent("api")
	}
	return &Handler{
		guides:   deps.Guides,
		hub:      deps.Hub,
		resolver: deps.Resolver,
		advisor:  deps.Advisor,
		limits:   deps.Limits,
		log:      deps.Log,
	}, nil
}

// Register mounts the API under r. generate runs before the stream
// handler, which is where the per-client generation limit goes.
func (h *Handler) Register(r gin.IRouter, generate ...gin.HandlerFunc) {
	api := r.Group("/api")

	api.POST("/guides/stream", append(generate, h.StreamGuide)...)
	api.GET("/guides", h.ListGuides)
	api.GET("/guides/:id", h.GetGuide)
	api.GET("/guides/:id/export", h.ExportGuide)
	api.GET("/runs/:id", h.GetRun)

	api.POST("/geocode", h.Geocode)
	api.POST("/geocode/batch", h.GeocodeBatch)
	api.GET("/weather", h.Weather)
	api.GET("/rate-limits", h.RateLimits)
}
