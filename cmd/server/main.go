package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	documentapp "github.com/warehouse/backend/internal/application/document"
	inventoryapp "github.com/warehouse/backend/internal/application/inventory"
	"github.com/warehouse/backend/internal/infrastructure/auth"
	"github.com/warehouse/backend/internal/infrastructure/config"
	"github.com/warehouse/backend/internal/infrastructure/logger"
	"github.com/warehouse/backend/internal/infrastructure/persistence"
	"github.com/warehouse/backend/internal/infrastructure/sequence"
	"github.com/warehouse/backend/internal/interfaces/http/handler"
	"github.com/warehouse/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting warehouse backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Order numbers come from Redis when available; a process-local
	// counter covers development setups without one.
	var numbers documentapp.OrderNumberGenerator
	redisNumbers, err := sequence.NewRedisGenerator(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory order numbers", zap.Error(err))
		numbers = sequence.NewMemoryGenerator()
	} else {
		defer func() {
			_ = redisNumbers.Close()
		}()
		numbers = redisNumbers
	}

	scope := persistence.NewGormTransactionScope(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)

	documentService := documentapp.NewDocumentService(scope, numbers, log)
	executionEngine := documentapp.NewExecutionEngine(scope, log)
	queryService := inventoryapp.NewQueryService(ledgerRepo, movementRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Config{
		Env:              cfg.App.Env,
		Logger:           log,
		JWTService:       jwtService,
		DocumentHandler:  handler.NewDocumentHandler(documentService, executionEngine),
		InventoryHandler: handler.NewInventoryHandler(queryService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
