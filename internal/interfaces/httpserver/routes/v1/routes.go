package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/video-conference-api/internal/interfaces/httpserver/handlers"
)

// Routes holds the API route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register registers all API routes under /api.
// If authMiddleware is provided, it will be applied to all of them.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := engine.Group("/api")
	if authMiddleware != nil {
		api.Use(authMiddleware)
	}
	RegisterVideoSessionRoutes(api, r.handlers.Session)
}
