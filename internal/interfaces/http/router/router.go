package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/infrastructure/auth"
	"github.com/warehouse/backend/internal/interfaces/http/handler"
	"github.com/warehouse/backend/internal/interfaces/http/middleware"
)

// Config holds the dependencies the router wires together
type Config struct {
	Env              string
	Logger           *zap.Logger
	JWTService       *auth.JWTService
	DocumentHandler  *handler.DocumentHandler
	InventoryHandler *handler.InventoryHandler
}

// New builds the gin engine with middleware and all API routes
func New(cfg Config) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTService))

	cfg.DocumentHandler.RegisterRoutes(api)
	cfg.InventoryHandler.RegisterRoutes(api)

	return engine
}
