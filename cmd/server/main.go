package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/config"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/database"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/logging"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/routes"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/services"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/session"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	ctx := context.Background()
	var shutdown []func()

	// Storage backend
	var st interface {
		store.Store
		store.Pinger
	}
	switch cfg.StoreBackend {
	case "postgres":
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = store.NewPostgresStore(database.DB)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler := logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewStdoutHandler(cfg.AppEnv),
			pgLogHandler,
		)))

		cleanupDone := make(chan struct{})
		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

		shutdown = append(shutdown, func() {
			close(cleanupDone)
			pgLogHandler.Stop()
			if err := database.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		})
	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			slog.Error("mongo connection failed", "error", err)
			os.Exit(1)
		}
		mongoStore := store.NewMongoStore(client.Database(cfg.MongoDatabase))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			slog.Error("mongo index creation failed", "error", err)
			os.Exit(1)
		}
		st = mongoStore
		shutdown = append(shutdown, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("mongo disconnect error", "error", err)
			}
		})
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		slog.Error("unknown STORE_BACKEND", "backend", cfg.StoreBackend)
		os.Exit(1)
	}

	// Sessions: redis when configured, otherwise process memory
	var sessions session.Store = session.NewMemoryStore()
	var sessionPinger store.Pinger
	if cfg.RedisAddr != "" {
		rdb, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		redisSessions := session.NewRedisStore(rdb)
		sessions, sessionPinger = redisSessions, redisSessions
		shutdown = append(shutdown, func() {
			if err := rdb.Close(); err != nil {
				slog.Error("redis close error", "error", err)
			}
		})
	}

	// Services
	authService := services.NewAuthService(st, sessions, cfg)
	listService := services.NewListService(st, services.ListOptions{
		Atomic:         cfg.AtomicSaves,
		CascadeRemoval: cfg.CascadeListRemoval,
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	listHandler := handlers.NewListHandler(listService, sessions)
	healthHandler := handlers.NewHealthHandler(st, sessionPinger)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, authHandler, listHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	for _, fn := range shutdown {
		fn()
	}
	sentry.Flush(2 * time.Second)

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
