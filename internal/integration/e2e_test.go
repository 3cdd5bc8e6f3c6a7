package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/masterchef/backend/internal/api"
	"github.com/pageza/masterchef/backend/internal/database"
	"github.com/pageza/masterchef/backend/internal/llm"
	"github.com/pageza/masterchef/backend/internal/pantry"
	"github.com/pageza/masterchef/backend/internal/router"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/internal/session"
	"github.com/pageza/masterchef/backend/internal/testhelpers"
	"github.com/pageza/masterchef/backend/pkg/client"
	"github.com/pageza/masterchef/backend/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newStack serves the full router over db with the deterministic mock model
func newStack(t *testing.T, db *gorm.DB, completer llm.Completer) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	metrics := service.NewMetrics(registry)

	profiles := service.NewProfileService(db)
	auth := service.NewAuthService(db, profiles, session.NewMemoryStore(), "integration-secret", time.Hour, metrics, logger)
	history := service.NewHistoryService(db)
	recipes := service.NewRecipeService(db, metrics, logger)
	exports := service.NewExportService(recipes, testhelpers.NewMemoryObjectStore(), logger)
	recipes.SetExportCleaner(exports)
	gateway := service.NewRecipeGateway(completer, history, metrics, logger,
		service.GatewayConfig{MaxTokens: 1024, Timeout: 5 * time.Second})

	handler := router.SetupRouter(router.Dependencies{
		Gateway:  gateway,
		Recipes:  recipes,
		Auth:     auth,
		Profiles: profiles,
		History:  history,
		Exports:  exports,
		HealthChecks: map[string]api.HealthCheck{
			"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		},
		AllowedOrigins: []string{"*"},
		Registry:       registry,
		Logger:         logger,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func runChefFlow(t *testing.T, srv *httptest.Server) {
	t.Helper()
	ctx := context.Background()
	c := client.New(srv.URL)

	var identities []string
	unsubscribe := c.Sessions().Subscribe(func(identity *types.Identity) {
		if identity == nil {
			identities = append(identities, "")
			return
		}
		identities = append(identities, identity.Username)
	})
	defer unsubscribe()

	identity, err := c.SignUp(ctx, "chef@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "chef", identity.Username)
	assert.Equal(t, []string{"", "chef"}, identities)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, me.UserID)

	list := pantry.NewList()
	for _, item := range []string{"chicken", "rice", "garlic", "onion"} {
		require.NoError(t, list.Add(item))
	}
	assert.False(t, list.Ready())
	assert.Equal(t, 80, list.Progress())
	require.NoError(t, list.Add("bell pepper"))
	require.True(t, list.Ready())
	assert.Equal(t, "ready", list.Status())

	markdown, err := c.GenerateRecipe(ctx, list.Items(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, markdown)

	book := client.NewRecipeBook(c)
	require.NoError(t, book.Refresh(ctx))
	assert.Empty(t, book.Recipes())

	saved, err := book.Save(ctx, markdown, list.Items())
	require.NoError(t, err)
	assert.Equal(t, service.ExtractTitle(markdown), saved.Title)
	assert.False(t, saved.IsFavorite)

	recipes, err := c.ListRecipes(ctx, "")
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	favorite, err := book.ToggleFavorite(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, favorite)

	// A fresh book sees the favorite persisted on the server
	reloaded := client.NewRecipeBook(c)
	require.NoError(t, reloaded.Refresh(ctx))
	require.Len(t, reloaded.Recipes(), 1)
	assert.True(t, reloaded.Recipes()[0].IsFavorite)

	require.NoError(t, book.SetNotes(ctx, saved.ID, "double the garlic"))
	got, err := c.GetRecipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "double the garlic", got.Notes)

	export, err := c.ExportRecipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, export.URL)

	require.NoError(t, book.Delete(ctx, saved.ID))
	recipes, err = c.ListRecipes(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, recipes)
	// Deleting an already deleted recipe is not an error
	require.NoError(t, c.DeleteRecipe(ctx, saved.ID))

	oldToken := c.Sessions().Token()
	refreshed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chef", refreshed.Username)
	assert.NotEqual(t, oldToken, c.Sessions().Token())
	_, err = c.ListRecipes(ctx, "")
	require.NoError(t, err)

	require.NoError(t, c.SignOut(ctx))
	assert.Equal(t, []string{"", "chef", "chef", ""}, identities)
	_, err = c.ListRecipes(ctx, "")
	assert.True(t, client.IsNotAuthenticated(err))
}

func TestChefFlowEndToEnd(t *testing.T) {
	srv := newStack(t, testhelpers.NewSQLiteDB(t), llm.NewMock())
	runChefFlow(t, srv)
}

func TestGenerationAliasesAndHealth(t *testing.T) {
	srv := newStack(t, testhelpers.NewSQLiteDB(t), llm.NewMock())

	for _, path := range []string{"/generate-recipe", "/api/recipes/generate", "/api/v1/recipes/generate"} {
		resp, err := http.Post(srv.URL+path, "application/json",
			strings.NewReader(`{"ingredients":"egg, milk, flour, sugar, butter"}`))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(body), "Pantry Skillet", path)
	}

	for _, path := range []string{"/health", "/api/health"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `recipe_generations_total{provider="mock",status="SUCCESS"} 3`)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestUnconfiguredGateway(t *testing.T) {
	srv := newStack(t, testhelpers.NewSQLiteDB(t), nil)

	_, err := client.New(srv.URL).GenerateRecipe(context.Background(), []string{"egg"}, nil)
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Contains(t, apiErr.Message, "service unconfigured")
	assert.False(t, apiErr.Retryable)
}
