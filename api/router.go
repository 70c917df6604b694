package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/webstruct/api/handler"
	"github.com/use-agent/webstruct/api/middleware"
	"github.com/use-agent/webstruct/config"
)

// Deps are the services the routes are served from.
type Deps struct {
	Pipeline   *handler.Pipeline
	Batches    *handler.BatchRunner
	Pool       handler.PoolReporter
	Summarizer string
	StartTime  time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Routes are mounted under /api/v1 and again under /api for older clients.
// Health stays outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	auth := middleware.Auth(nil)
	if cfg.Auth.Enabled {
		auth = middleware.Auth(cfg.Auth.APIKeys)
	}
	limit := middleware.RateLimit(cfg.RateLimit)

	for _, prefix := range []string{"/api/v1", "/api"} {
		g := r.Group(prefix)
		g.GET("/health", handler.Health(deps.Pool, deps.Summarizer, deps.StartTime))

		protected := g.Group("", auth, limit)
		protected.POST("/scrape", handler.Scrape(deps.Pipeline))
		protected.POST("/parse", handler.Parse(deps.Pipeline))
		if deps.Batches != nil {
			protected.POST("/batch/scrape", handler.PostBatch(deps.Batches))
			protected.GET("/batch/:id", handler.GetBatch(deps.Batches))
		}
	}

	return r
}
