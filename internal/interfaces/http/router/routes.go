package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/auth"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
	"github.com/tablekit/backoffice/internal/infrastructure/logger"
	"github.com/tablekit/backoffice/internal/interfaces/http/handler"
	"github.com/tablekit/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the route targets
type Handlers struct {
	Orders    *handler.OrderHandler
	Tables    *handler.TableHandler
	Inventory *handler.InventoryHandler
	Health    *handler.HealthHandler
}

// EngineConfig carries what the middleware chain needs
type EngineConfig struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	JWT            *auth.JWTService
	Logger         *zap.Logger
}

// NewEngine builds the gin engine with the full middleware chain and
// every route. Role gates: manager for table registration and override,
// inventory writes and ledger checks; staff for the rest.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		logger.GinMiddleware(cfg.Logger),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.Health.Health)

	staff := middleware.RequireRole(shared.RoleStaff)
	manager := middleware.RequireRole(shared.RoleManager)

	orders := NewDomainGroup("orders", "/orders").Use(staff).
		POST("", h.Orders.Create).
		GET("", h.Orders.List).
		GET("/:id", h.Orders.GetByID).
		PUT("/:id/status", h.Orders.UpdateStatus).
		DELETE("/:id", manager, h.Orders.Delete)

	tables := NewDomainGroup("tables", "/tables").Use(staff).
		POST("", manager, h.Tables.Create).
		GET("", h.Tables.List).
		GET("/:id", h.Tables.GetByID).
		POST("/:id/occupy", h.Tables.Occupy).
		POST("/:id/release", h.Tables.Release).
		PUT("/:id/status", manager, h.Tables.SetStatus)

	inventory := NewDomainGroup("inventory", "/inventory").Use(staff).
		POST("", manager, h.Inventory.Create).
		POST("/import", manager, h.Inventory.Import).
		GET("", h.Inventory.List).
		GET("/:id", h.Inventory.GetByID).
		PUT("/:id", manager, h.Inventory.Update).
		POST("/:id/transactions", manager, h.Inventory.RecordTransaction).
		GET("/:id/ledger", manager, h.Inventory.VerifyLedger)

	NewRouter(engine, WithAPIMiddleware(
		middleware.JWTAuth(middleware.DefaultJWTConfig(cfg.JWT, cfg.Logger)),
		middleware.SpanEnricher(),
	)).
		Register(orders).
		Register(tables).
		Register(inventory).
		Setup()

	return engine
}
