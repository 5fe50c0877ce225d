package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/retailpro/retailpro/internal/access"
	"github.com/retailpro/retailpro/internal/app"
	"github.com/retailpro/retailpro/internal/auth"
	"github.com/retailpro/retailpro/internal/inventory"
	"github.com/retailpro/retailpro/internal/media"
	"github.com/retailpro/retailpro/internal/reporting"
	"github.com/retailpro/retailpro/internal/sales"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
	"github.com/retailpro/retailpro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "retailpro_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	guard := access.Guard{Profiles: authService, Logger: logger}

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, templates, csrfManager)
	clientHandler := inventory.NewClientHandler(logger, inventoryService, templates, csrfManager)

	reportRepo := reporting.NewRepository(dbpool)
	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reporting.NewService(reportRepo, reportCache)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(salesRepo, reportCache, logger)
	salesHandler := sales.NewHandler(logger, salesService, inventoryService, templates, csrfManager)

	reportHandler := reporting.NewHandler(logger, reportService, inventoryService, salesService, templates, csrfManager)

	storageClient := media.NewStorageClient(cfg.StorageURL, cfg.StorageBucket, cfg.StorageToken)
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := storageClient.Ping(pingCtx); err != nil {
		logger.Warn("storage ping", slog.Any("error", err))
	}
	pingCancel()
	mediaHandler := media.NewHandler(logger, storageClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Guard:            guard,
		AuthHandler:      authHandler,
		InventoryHandler: inventoryHandler,
		ClientHandler:    clientHandler,
		SalesHandler:     salesHandler,
		ReportHandler:    reportHandler,
		MediaHandler:     mediaHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
