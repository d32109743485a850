package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizops/backend/internal/interfaces/http/dto"
	"github.com/bizops/backend/internal/interfaces/http/handler"
	"github.com/bizops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRouter_Setup(t *testing.T) {
	tests := []struct {
		name    string
		opts    []RouterOption
		target  string
		wantMsg string
	}{
		{name: "default version", target: "/api/v1/materials/ping", wantMsg: "pong"},
		{name: "custom version", opts: []RouterOption{WithAPIVersion("v2")}, target: "/api/v2/materials/ping", wantMsg: "pong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("catalog", "/materials").
				GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
			NewRouter(engine, tt.opts...).Register(g).Setup()

			w := serve(engine, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantMsg, w.Body.String())
		})
	}
}

func TestDomainGroup(t *testing.T) {
	t.Run("group middleware runs before handlers", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/customers").
			Use(func(c *gin.Context) {
				c.Header("X-Group", "ledger")
				c.Next()
			}).
			POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
		NewRouter(engine).Register(g).Setup()

		w := serve(engine, http.MethodPost, "/api/v1/customers")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "ledger", w.Header().Get("X-Group"))

		w = serve(engine, http.MethodPut, "/api/v1/customers/42")
		assert.Equal(t, "42", w.Body.String())
	})

	t.Run("routes include the prefix", func(t *testing.T) {
		nop := func(*gin.Context) {}
		g := NewDomainGroup("catalog", "/materials").GET("", nop).PUT("/:id/price", nop)

		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/materials", g.Prefix())
		assert.Equal(t, []Route{
			{Method: http.MethodGet, Path: "/materials"},
			{Method: http.MethodPut, Path: "/materials/:id/price"},
		}, g.Routes())
	})
}

func TestRouteTables(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Register(LedgerRoutes(handler.NewLedgerHandler(nil)), MaterialRoutes(handler.NewMaterialHandler(nil))).
		Setup()

	mounted := map[string]bool{}
	for _, ri := range engine.Routes() {
		mounted[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/customers",
		"GET /api/v1/customers",
		"GET /api/v1/customers/:id",
		"POST /api/v1/customers/:id/works",
		"GET /api/v1/customers/:id/works",
		"POST /api/v1/customers/:id/materials",
		"POST /api/v1/customers/:id/payments",
		"GET /api/v1/customers/:id/payments/:paymentId",
		"POST /api/v1/customers/:id/payments/:paymentId/installments",
		"POST /api/v1/customers/:id/expenses",
		"POST /api/v1/customers/:id/activities",
		"GET /api/v1/customers/:id/activities",
		"GET /api/v1/customers/:id/analytics",
		"GET /api/v1/customers/:id/analytics/works/:workId",
		"GET /api/v1/materials",
		"POST /api/v1/materials",
		"GET /api/v1/materials/:id",
		"PUT /api/v1/materials/:id/price",
		"POST /api/v1/materials/:id/adjustments",
	} {
		assert.True(t, mounted[want], "missing route %s", want)
	}
	require.Len(t, engine.Routes(), 19)
}

func TestNewEngine(t *testing.T) {
	system := handler.NewSystemHandler("project-ledger", "test", map[string]handler.Pinger{
		"database": handler.PingFunc(func(context.Context) error { return nil }),
	})
	engine := NewEngine(EngineConfig{}, Handlers{System: system})

	t.Run("health", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("unknown route uses the error envelope", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/api/v1/nowhere")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeRouteNotFound)
	})
}

func TestNewEngine_DegradedHealth(t *testing.T) {
	system := handler.NewSystemHandler("project-ledger", "test", map[string]handler.Pinger{
		"redis": handler.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	engine := NewEngine(EngineConfig{}, Handlers{System: system})

	w := serve(engine, http.MethodGet, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestNewEngine_Swagger(t *testing.T) {
	t.Run("serves the generated document when enabled", func(t *testing.T) {
		engine := NewEngine(EngineConfig{Swagger: true}, Handlers{})

		w := serve(engine, http.MethodGet, "/swagger/doc.json")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"/api/v1"`)
		assert.Contains(t, w.Body.String(), `"/customers/{id}/materials"`)
		assert.Contains(t, w.Body.String(), `"addInstallment"`)
	})

	t.Run("not mounted by default", func(t *testing.T) {
		engine := NewEngine(EngineConfig{}, Handlers{})

		w := serve(engine, http.MethodGet, "/swagger/doc.json")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeRouteNotFound)
	})
}
