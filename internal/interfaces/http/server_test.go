package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/interfaces/http/handlers"
	"github.com/your-org/apparel-store/internal/interfaces/http/middleware"
	"github.com/your-org/apparel-store/internal/interfaces/http/routes"
	"github.com/your-org/apparel-store/internal/pkg/auth"
	"github.com/your-org/apparel-store/internal/pkg/metrics"
	"github.com/your-org/apparel-store/internal/pkg/testdb"
)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "apparel-store", Version: "1.2.3", Environment: "test"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		JWT:    config.JWTConfig{Secret: "test-secret", Issuer: "apparel-store", AccessTokenExpiry: time.Hour},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"https://shop.example.com"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	logger, _ := logtest.NewNullLogger()
	db := testdb.Open(t, &product.Product{}, &product.Variant{}, &product.Size{})

	registry := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(registry)
	m.IncFailure("CART_EMPTY")

	srv := NewServer(cfg, logger, Options{
		Handlers: routes.Handlers{Product: handlers.NewProductHandler(product.NewService(db), logger)},
		Health:   handlers.NewHealthHandler(cfg.App.Version, cfg.App.Environment, map[string]handlers.HealthChecker{}),
		Gatherer: registry,
	})
	return srv, cfg
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestProbesAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "order_build_failures_total")
}

func TestAPIRoutesRequireIdentity(t *testing.T) {
	srv, cfg := newTestServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.NewJWTManager(cfg.JWT).GenerateAccessToken(7, "buyer@example.com", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(srv, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestBodyLimit(t *testing.T) {
	srv, cfg := newTestServer(t)

	token, err := auth.NewJWTManager(cfg.JWT).GenerateAccessToken(1, "admin@example.com", true)
	require.NoError(t, err)

	body := `{"name":"` + strings.Repeat("x", maxRequestBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := serve(srv, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body too large")
}

func TestStopWithoutStart(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Stop(ctx))
}
