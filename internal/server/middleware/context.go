package middleware

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/eldarhac/GraphMind/internal/queue"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/query"
	"github.com/eldarhac/GraphMind/pkg/store"
)

type AppUser struct {
	PersonID string
	Role     string
}

// QueryProcessor answers one question against a snapshot.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, req query.Request) query.Response
}

// GraphSource hands out the current network snapshot.
type GraphSource interface {
	Get(ctx context.Context) (common.Graph, error)
	// Invalidate forces the next Get to reload.
	Invalidate()
}

type App struct {
	Orchestrator QueryProcessor
	Snapshots    GraphSource
	Chats        store.ChatStorage
	Queue        queue.Publisher
	// Keyfunc verifies bearer tokens. Nil disables JWT authentication so
	// only the master key is accepted.
	Keyfunc        jwt.Keyfunc
	MasterAPIKey   string
	MasterPersonID string
	MasterRole     string
	HistoryLimit   int
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
