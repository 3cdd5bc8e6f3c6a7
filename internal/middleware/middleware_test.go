package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.Response {
	t.Helper()
	var body apperrors.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := new(mockValidator)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID, Email: "chef@example.com"}, nil)
	validator.On("ValidateToken", "bad").Return(nil, apperrors.New(apperrors.NotAuthenticated, "invalid or expired session"))

	router := gin.New()
	router.GET("/private", AuthMiddleware(validator), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "token": Token(c)})
	})

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"valid token", "Bearer good", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "missing or malformed authorization header"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "missing or malformed authorization header"},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, "invalid or expired session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
				return
			}
			body := decodeError(t, w)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, apperrors.NotAuthenticated, body.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	validator := new(mockValidator)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID}, nil)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("nope"))

	router := gin.New()
	router.GET("/open", OptionalAuth(validator), func(c *gin.Context) {
		if id, ok := UserID(c); ok {
			c.String(http.StatusOK, id.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	for header, want := range map[string]string{
		"":            "anonymous",
		"Bearer bad":  "anonymous",
		"Bearer good": userID.String(),
	} {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, w.Body.String())
	}

	t.Run("query token is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open?access_token=good", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "anonymous", w.Body.String())
	})
}

func TestQueryTokenOnlyForStreams(t *testing.T) {
	userID := uuid.New()
	validator := new(mockValidator)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID}, nil)

	router := gin.New()
	whoami := func(c *gin.Context) {
		if id, ok := UserID(c); ok {
			c.String(http.StatusOK, id.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	router.GET("/stream", StreamAuth(validator), whoami)
	router.GET("/private", AuthMiddleware(validator), whoami)

	req := httptest.NewRequest(http.MethodGet, "/stream?access_token=good", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, userID.String(), w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/private?access_token=good", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandler(zap.NewNop()))
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.New(apperrors.NotFound, "recipe not found"))
	})
	router.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.UpstreamFailure, "generation failed", errors.New("status 529")))
	})
	router.GET("/internal", func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused"))
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "recipe not found", body.Message)
		assert.False(t, body.Retryable)
	})

	t.Run("upstream failure is retryable", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upstream", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "generation failed", body.Message)
		assert.Equal(t, "status 529", body.Error)
		assert.True(t, body.Retryable)
	})

	t.Run("internal cause is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "internal server error", body.Message)
		assert.Empty(t, body.Error)
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.Internal, decodeError(t, w).Code)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), Logger(zap.NewNop()))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	t.Run("allow list", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"http://localhost:5173"}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"*"}))
		router.POST("/generate-recipe", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodOptions, "/generate-recipe", nil)
		req.Header.Set("Origin", "http://anywhere.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := gin.New()
	router.Use(Metrics(reg))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
