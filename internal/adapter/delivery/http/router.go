package http

import (
	handler "entity-resolver/internal/adapter/handler/http"

	"github.com/fasthttp/router"
	"go.uber.org/zap"
)

// RegisterRoutes sets up the resolution API and the health check.
func RegisterRoutes(r *router.Router, h *handler.ResolverHandler, logger *zap.Logger) {
	logger.Info("Setting up application-specific routes...")

	r.GET("/networks", h.GetNetworks)
	r.POST("/networks/refresh", h.RefreshNetworks)
	r.GET("/resolve/one", h.ResolveOne)
	r.GET("/resolve/many", h.ResolveMany)
	r.POST("/resolve/associated", h.ResolveAssociated)

	logger.Info("Setting up health check route...")
	r.GET("/health", h.Health)

	logger.Info("All routes registered.")
}
