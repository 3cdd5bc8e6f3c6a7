package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/internal/testhelpers"
)

func TestHistoryMetrics(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	history := NewHistoryService(db)
	recipes := NewRecipeService(db, nil, zap.NewNop())
	ctx := context.Background()
	ownerID := uuid.New()

	for _, g := range []models.RecipeGeneration{
		{OwnerID: &ownerID, Provider: "mock", Status: models.GenerationSuccess, LatencyMs: 100, OutputTokens: 250},
		{OwnerID: &ownerID, Provider: "mock", Status: models.GenerationSuccess, LatencyMs: 300, OutputTokens: 150},
		{OwnerID: &ownerID, Provider: "mock", Status: models.GenerationError, ErrorKind: "timeout", LatencyMs: 200},
		{Provider: "mock", Status: models.GenerationSuccess, LatencyMs: 9000, OutputTokens: 999},
	} {
		g := g
		require.NoError(t, history.Record(ctx, &g))
	}

	id, err := recipes.Create(ctx, &ownerID, "# Soup", nil)
	require.NoError(t, err)
	_, err = recipes.Create(ctx, &ownerID, "# Stew", nil)
	require.NoError(t, err)
	require.NoError(t, recipes.SetFavorite(ctx, ownerID, id, true))

	metrics, err := history.Metrics(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), metrics.TotalGenerations)
	assert.Equal(t, int64(1), metrics.FailedGenerations)
	assert.InDelta(t, 200.0, metrics.AverageLatencyMs, 0.001)
	assert.Equal(t, int64(400), metrics.TotalTokensUsed)
	assert.Equal(t, int64(2), metrics.TotalRecipesSaved)
	assert.Equal(t, int64(1), metrics.FavoriteRecipes)

	list, err := history.List(ctx, ownerID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	first, err := history.List(ctx, ownerID, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	second, err := history.List(ctx, ownerID, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	for _, g := range first {
		assert.NotEqual(t, second[0].ID, g.ID, "pages do not overlap")
	}

	list, err = history.List(ctx, ownerID, 2, -5)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestHistoryMetricsEmpty(t *testing.T) {
	history := NewHistoryService(testhelpers.NewSQLiteDB(t))

	metrics, err := history.Metrics(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, metrics.TotalGenerations)
	assert.Zero(t, metrics.AverageLatencyMs)
	assert.Zero(t, metrics.TotalTokensUsed)
}
