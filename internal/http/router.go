// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadcall/internal/http/handlers"
	"roadcall/internal/http/middleware"
	"roadcall/internal/maps"
	"roadcall/internal/modules/contractors"
	"roadcall/internal/modules/pricing"
)

type RouterDeps struct {
	Quotes      *pricing.Service
	Contractors *contractors.Store
	Estimator   *maps.TravelEstimator
	Log         *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging(deps.Log))

	quoteHandler := handlers.NewQuoteHandler(deps.Quotes, deps.Estimator, deps.Log)
	contractorHandler := handlers.NewContractorHandler(deps.Contractors, deps.Log)

	api := r.Group("/api")
	{
		api.POST("/quotes", quoteHandler.Calculate)
		api.POST("/jobs/:jobID/lock", quoteHandler.Lock)
		api.GET("/surge", quoteHandler.Surge)
		api.POST("/rules/test", quoteHandler.TestRules)
		api.POST("/rules/seed", quoteHandler.SeedRules)
		api.GET("/analytics", quoteHandler.Analytics)
		api.POST("/contractors/:id/availability", contractorHandler.UpdateAvailability)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	return r
}
