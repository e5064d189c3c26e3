// Package router wires the HTTP handlers and middleware into a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/infrastructure/auth"
	"github.com/inventra/backend/internal/infrastructure/config"
	"github.com/inventra/backend/internal/infrastructure/logger"
	"github.com/inventra/backend/internal/interfaces/http/handler"
	"github.com/inventra/backend/internal/interfaces/http/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	System   *handler.SystemHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Stock    *handler.StockHandler
}

// New builds the gin engine with the full middleware chain and all routes
func New(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.GinRecovery(log),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
	)

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(
		middleware.JWTAuth(middleware.JWTConfig{
			Service:   jwtService,
			SkipPaths: []string{"/health", "/ready"},
		}),
		middleware.Tenant(),
	)

	products := api.Group("/products")
	{
		products.POST("", h.Products.Create)
		products.GET("", h.Products.List)
		products.GET("/:id", h.Products.GetByID)
		products.GET("/sku/:sku", h.Products.GetBySKU)
		products.PUT("/:id", h.Products.Update)
		products.DELETE("/:id", h.Products.Delete)

		products.GET("/:id/stock", h.Stock.GetQuantity)
		products.GET("/:id/stock/entries", h.Stock.ListEntries)
		products.POST("/:id/stock/adjustments", h.Stock.Adjust)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.Orders.Create)
		orders.GET("", h.Orders.List)
		orders.GET("/:id", h.Orders.GetByID)
		orders.PUT("/:id", h.Orders.Update)
		orders.DELETE("/:id", h.Orders.Delete)
		orders.POST("/:id/transition", h.Orders.Transition)
		orders.POST("/:id/payments", h.Orders.RecordPayment)
	}

	return engine
}
