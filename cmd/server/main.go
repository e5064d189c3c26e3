package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/inventra/backend/internal/application/catalog"
	ledgerapp "github.com/inventra/backend/internal/application/ledger"
	orderapp "github.com/inventra/backend/internal/application/order"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/auth"
	"github.com/inventra/backend/internal/infrastructure/cache"
	"github.com/inventra/backend/internal/infrastructure/config"
	"github.com/inventra/backend/internal/infrastructure/event"
	"github.com/inventra/backend/internal/infrastructure/logger"
	"github.com/inventra/backend/internal/infrastructure/persistence"
	"github.com/inventra/backend/internal/interfaces/http/handler"
	"github.com/inventra/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventra backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Idempotency store for manual stock adjustments. Redis when configured,
	// in-process otherwise.
	var idempotency shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotency = redisStore
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotency = cache.NewMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	eventBus := event.NewInMemoryEventBus(log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(ctx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	alertNotifier := event.NewBusNotifier(eventBus, log)

	scope := persistence.NewGormTransactionScope(db.DB)
	stockService := ledgerapp.NewStockService(scope, idempotency, eventBus, alertNotifier, log)
	orderService := orderapp.NewService(scope, stockService, eventBus, log)
	productService := catalogapp.NewProductService(persistence.NewGormProductRepository(db.DB), log)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(cfg, log, jwtService, router.Handlers{
		System:   handler.NewSystemHandler(db),
		Products: handler.NewProductHandler(productService),
		Orders:   handler.NewOrderHandler(orderService),
		Stock:    handler.NewStockHandler(stockService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
