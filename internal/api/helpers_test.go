package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/llm"
	"github.com/pageza/masterchef/backend/internal/middleware"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/internal/session"
	"github.com/pageza/masterchef/backend/internal/testhelpers"
	"github.com/pageza/masterchef/backend/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router  *gin.Engine
	auth    *service.AuthService
	recipes *service.RecipeService
	store   *testhelpers.MemoryObjectStore
}

// newTestEnv wires the handlers to real services backed by in-memory SQLite
func newTestEnv(t *testing.T, completer llm.Completer) *testEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	logger := zap.NewNop()
	metrics := service.NewMetrics(prometheus.NewRegistry())

	profiles := service.NewProfileService(db)
	auth := service.NewAuthService(db, profiles, session.NewMemoryStore(), "test-secret", time.Hour, metrics, logger)
	history := service.NewHistoryService(db)
	recipes := service.NewRecipeService(db, metrics, logger)
	store := testhelpers.NewMemoryObjectStore()
	exports := service.NewExportService(recipes, store, logger)
	recipes.SetExportCleaner(exports)
	gateway := service.NewRecipeGateway(completer, history, metrics, logger,
		service.GatewayConfig{MaxTokens: 1024, Timeout: time.Second})

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.GET("/health", NewHealthHandler(nil).Health)

	gatewayHandler := NewGatewayHandler(gateway)
	router.POST("/generate-recipe", middleware.OptionalAuth(auth), gatewayHandler.Generate)

	v1 := router.Group("/api/v1")
	NewAuthHandler(auth, profiles).RegisterRoutes(v1)
	protected := v1.Group("/recipes")
	protected.Use(middleware.AuthMiddleware(auth))
	NewRecipeHandler(recipes, exports, history).RegisterRoutes(protected)

	return &testEnv{router: router, auth: auth, recipes: recipes, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signUp(t *testing.T, email string) types.SessionResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", types.CredentialsRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess types.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	return sess
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
