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

	"github.com/bigtal/bigtal/internal/app"
	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/invoices"
	"github.com/bigtal/bigtal/internal/masterdata"
	"github.com/bigtal/bigtal/internal/observability"
	"github.com/bigtal/bigtal/internal/platform/cache"
	"github.com/bigtal/bigtal/internal/platform/db"
	"github.com/bigtal/bigtal/internal/products"
	"github.com/bigtal/bigtal/internal/shared"
	"github.com/bigtal/bigtal/internal/users"
	"github.com/bigtal/bigtal/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		logger.Error("bootstrap schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	ledger := inventory.NewLedger()

	overviewCache := inventory.NewOverviewCache(redisClient, cfg.OverviewCacheTTL)
	inventoryRepo := inventory.NewRepository(pool, ledger)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, idempotencyStore, overviewCache, inventory.ServiceConfig{
		LowStockThreshold: cfg.LowStockThreshold,
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	productsRepo := products.NewRepository(pool, ledger)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	invoicesRepo := invoices.NewRepository(pool, ledger)
	invoicesService := invoices.NewService(invoicesRepo, auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	masterdataRepo := masterdata.NewRepository(pool)
	masterdataService := masterdata.NewService(masterdataRepo, auditLogger)
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ProductsHandler:   productsHandler,
		InventoryHandler:  inventoryHandler,
		InvoicesHandler:   invoicesHandler,
		MasterDataHandler: masterdataHandler,
		UsersHandler:      usersHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
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
