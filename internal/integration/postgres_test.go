//go:build integration

package integration

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/database"
	"github.com/pageza/masterchef/backend/internal/llm"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/internal/session"
	"github.com/pageza/masterchef/backend/internal/testhelpers"
)

func migratePostgres(t *testing.T, url string) *database.Migrator {
	t.Helper()
	sqlDB, err := sql.Open("postgres", url)
	require.NoError(t, err)
	m, err := database.NewMigrator(sqlDB, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.Up())
	return m
}

func TestPostgresMigrations(t *testing.T) {
	url := testhelpers.StartPostgres(t)
	m := migratePostgres(t, url)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Running again is a no-op
	require.NoError(t, m.Up())

	db := testhelpers.OpenPostgres(t, url)
	for _, table := range []string{"users", "user_profiles", "saved_recipes", "recipe_generations"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.True(t, db.Migrator().HasTable("saved_recipes"))

	require.NoError(t, m.Down())
	assert.False(t, db.Migrator().HasTable("saved_recipes"))
}

func TestLongTitleOnPostgres(t *testing.T) {
	url := testhelpers.StartPostgres(t)
	migratePostgres(t, url)
	db := testhelpers.OpenPostgres(t, url)

	svc := service.NewRecipeService(db, service.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
	ctx := context.Background()
	owner := uuid.New()
	heading := strings.Repeat("Slow-Roasted Heirloom Tomato ", 14)

	id, err := svc.Create(ctx, &owner, "# "+heading+"\n\nRoast.", []string{"tomato"})
	require.NoError(t, err)

	recipe, err := svc.Get(ctx, owner, id)
	require.NoError(t, err)
	assert.Greater(t, len(recipe.Title), 255)
	assert.Equal(t, strings.TrimSpace(heading), recipe.Title)
}

func TestChefFlowOnPostgres(t *testing.T) {
	url := testhelpers.StartPostgres(t)
	migratePostgres(t, url)
	db := testhelpers.OpenPostgres(t, url)

	srv := newStack(t, db, llm.NewMock())
	runChefFlow(t, srv)
}

func TestDuplicateSignUpOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	svc := service.NewAuthService(db, service.NewProfileService(db), session.NewMemoryStore(), "secret", time.Hour,
		service.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "chef@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "CHEF@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
}
