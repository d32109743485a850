package router

import (
	"net/http"

	_ "github.com/bizops/backend/docs"
	"github.com/bizops/backend/internal/infrastructure/logger"
	"github.com/bizops/backend/internal/interfaces/http/dto"
	"github.com/bizops/backend/internal/interfaces/http/handler"
	"github.com/bizops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// LedgerRoutes maps the customer ledger endpoints
func LedgerRoutes(h *handler.LedgerHandler) *DomainGroup {
	customers := NewDomainGroup("ledger", "/customers")
	customers.
		POST("", h.RegisterCustomer).
		GET("", h.ListCustomers).
		GET("/:id", h.GetLedger).
		POST("/:id/works", h.AddWork).
		GET("/:id/works", h.ListWorks).
		POST("/:id/materials", h.RecordUsage).
		POST("/:id/payments", h.CreatePayment).
		GET("/:id/payments/:paymentId", h.GetPayment).
		POST("/:id/payments/:paymentId/installments", h.AddInstallment).
		POST("/:id/expenses", h.AddExpense).
		POST("/:id/activities", h.AppendActivity).
		GET("/:id/activities", h.ListActivities).
		GET("/:id/analytics", h.GetAnalytics).
		GET("/:id/analytics/works/:workId", h.GetWorkAnalytics)
	return customers
}

// MaterialRoutes maps the material catalog endpoints
func MaterialRoutes(h *handler.MaterialHandler) *DomainGroup {
	materials := NewDomainGroup("catalog", "/materials")
	materials.
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id/price", h.UpdatePrice).
		POST("/:id/adjustments", h.AdjustStock)
	return materials
}

// EngineConfig holds the collaborators of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	BodyLimit      int64
	TrustedProxies []string
	Swagger        bool // serve the API docs at /swagger/index.html
}

// Handlers bundles the HTTP handlers mounted by NewEngine
type Handlers struct {
	Ledger   *handler.LedgerHandler
	Material *handler.MaterialHandler
	System   *handler.SystemHandler
}

// NewEngine builds the gin engine with the standard middleware chain, the
// health endpoint, the optional API docs and every /api/v1 route.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = middleware.DefaultBodyLimit
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanAttributes(),
		logger.GinMiddleware(cfg.Logger),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.BodyLimit),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound,
			"No route for "+c.Request.Method+" "+c.Request.URL.Path,
			middleware.GetRequestID(c),
		))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine)
	if h.Ledger != nil {
		r.Register(LedgerRoutes(h.Ledger))
	}
	if h.Material != nil {
		r.Register(MaterialRoutes(h.Material))
	}
	r.Setup()

	return engine
}
