package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eldarhac/GraphMind/internal/db"
	"github.com/eldarhac/GraphMind/internal/queue"
	mid "github.com/eldarhac/GraphMind/internal/server/middleware"
	"github.com/eldarhac/GraphMind/internal/snapshot"
	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/cache"
	"github.com/eldarhac/GraphMind/pkg/logger"
	pgxstore "github.com/eldarhac/GraphMind/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without AUTH_URL only the master key is accepted.
	var keyFn jwt.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		keyFn = k.Keyfunc
	} else {
		logger.Warn("AUTH_URL is not set, JWT authentication is disabled")
	}

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(util.GetEnvString("MIGRATIONS_PATH", "migrations"), databaseURL); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Invalid DATABASE_URL", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	dbStorage := pgxstore.NewGraphDBStorage(
		conn,
		pgxstore.WithStatementTimeout(util.GetEnvDuration("SQL_TIMEOUT", 5*time.Second)),
		pgxstore.WithQueryRole(util.GetEnv("SQL_QUERY_ROLE")),
	)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	aiClient, err := util.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}

	source, err := snapshotSource(ctx, dbStorage)
	if err != nil {
		logger.Fatal("Failed to create snapshot source", "err", err)
	}
	snapshots := snapshot.NewProvider(source, util.GetEnvDuration("SNAPSHOT_TTL", snapshot.DefaultTTL))

	responses := cache.NewMemory[string]()
	go sweepCache(ctx, responses, time.Minute)

	app := &mid.App{
		Orchestrator:   newOrchestrator(aiClient, dbStorage, snapshots, responses),
		Snapshots:      snapshots,
		Chats:          dbStorage,
		Queue:          queue.NewChannelPublisher(ch),
		Keyfunc:        keyFn,
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterPersonID: util.GetEnv("MASTER_PERSON_ID"),
		MasterRole:     util.GetEnvString("MASTER_ROLE", "admin"),
		HistoryLimit:   util.GetEnvNumeric("CHAT_HISTORY_LIMIT", 20),
	}

	e.Use(mid.MetricsMiddleware)
	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
