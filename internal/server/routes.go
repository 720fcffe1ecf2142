package server

import (
	"github.com/eldarhac/GraphMind/internal/server/middleware"
	"github.com/eldarhac/GraphMind/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Query routes
	apiRoutes.POST("/chat", routes.PostChatHandler)
	apiRoutes.GET("/chats/:conversation_id", routes.GetChatHandler)
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.POST("/graph/reload", routes.ReloadGraphHandler, middleware.RequireRole("admin"))

	// Background jobs
	apiRoutes.POST("/embeddings/refresh", routes.RefreshEmbeddingsHandler, middleware.RequireRole("admin"))
	apiRoutes.POST("/snapshots/export", routes.ExportSnapshotHandler, middleware.RequireRole("admin"))
}
