package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eldarhac/GraphMind/internal/server/middleware"
	"github.com/eldarhac/GraphMind/pkg/logger"
)

var graphLog = logger.For("Graph")

func GetGraphHandler(c echo.Context) error {
	ac := c.(*middleware.AppContext)
	g, err := ac.App.Snapshots.Get(c.Request().Context())
	if err != nil {
		graphLog.Error("Failed to load snapshot", "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "Network is not available"})
	}
	return c.JSON(http.StatusOK, g)
}

// ReloadGraphHandler drops the cached snapshot and loads it again.
func ReloadGraphHandler(c echo.Context) error {
	ac := c.(*middleware.AppContext)
	ac.App.Snapshots.Invalidate()
	g, err := ac.App.Snapshots.Get(c.Request().Context())
	if err != nil {
		graphLog.Error("Failed to reload snapshot", "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "Network is not available"})
	}
	graphLog.Info("Snapshot reloaded", "people", len(g.Nodes), "connections", len(g.Edges))
	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Network reloaded",
		"people":      len(g.Nodes),
		"connections": len(g.Edges),
	})
}
