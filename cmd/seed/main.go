package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/config"
	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/database"
	"github.com/pageza/masterchef/backend/internal/logging"
	"github.com/pageza/masterchef/backend/internal/pantry"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/internal/session"
)

func main() {
	users := flag.Int("users", 3, "Number of demo users to create")
	recipesPerUser := flag.Int("recipes", 5, "Saved recipes per user")
	password := flag.String("password", "password123", "Password for every demo user")
	seed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Environment.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "masterchef-seed", string(cfg.Environment))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(cfg, db, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	metrics := service.NewMetrics(prometheus.NewRegistry())
	profiles := service.NewProfileService(db)
	auth := service.NewAuthService(db, profiles, session.NewMemoryStore(), cfg.JWTSecret, cfg.JWTTTL, metrics, logger)
	recipes := service.NewRecipeService(db, metrics, logger)

	faker := gofakeit.New(*seed)
	ctx := context.Background()

	for i := 0; i < *users; i++ {
		email := fmt.Sprintf("%s%d@example.com", strings.ToLower(faker.FirstName()), i+1)
		sess, err := auth.SignUp(ctx, email, *password)
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Info("demo user already exists", zap.String("email", email))
			continue
		}
		if err != nil {
			logger.Fatal("failed to create demo user", zap.String("email", email), zap.Error(err))
		}

		owner := sess.User.UserID
		for j := 0; j < *recipesPerUser; j++ {
			ingredients := fakeIngredients(faker, pantry.MinIngredients)
			if _, err := recipes.Create(ctx, &owner, fakeRecipe(faker, ingredients), ingredients); err != nil {
				logger.Fatal("failed to create demo recipe", zap.Error(err))
			}
		}
		if *recipesPerUser > 0 {
			saved, err := recipes.ListByOwner(ctx, owner, "")
			if err == nil && len(saved) > 0 {
				_ = recipes.SetFavorite(ctx, owner, saved[0].ID, true)
			}
		}

		logger.Info("created demo user",
			zap.String("email", email),
			zap.Int("recipes", *recipesPerUser),
		)
	}

	fmt.Printf("Seeded %d users with password %q\n", *users, *password)
}

func fakeIngredients(faker *gofakeit.Faker, n int) []string {
	list := pantry.NewList()
	for attempts := 0; list.Len() < n && attempts < n*50; attempts++ {
		name := faker.Vegetable()
		if attempts%2 == 1 {
			name = faker.Fruit()
		}
		_ = list.Add(strings.ToLower(name))
	}
	return list.Items()
}

func fakeRecipe(faker *gofakeit.Faker, ingredients []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n## Ingredients\n\n", faker.Dinner(), faker.Sentence(14))
	for _, item := range ingredients {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	sb.WriteString("\n## Instructions\n\n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&sb, "%d. %s\n", i, faker.Sentence(10))
	}
	return sb.String()
}
