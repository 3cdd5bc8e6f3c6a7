package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/api"
	"github.com/pageza/masterchef/backend/internal/middleware"
	"github.com/pageza/masterchef/backend/internal/service"
)

// Dependencies are the services the HTTP surface is built from
type Dependencies struct {
	Gateway  service.IRecipeGateway
	Recipes  service.IRecipeService
	Auth     service.IAuthService
	Profiles service.IProfileService
	History  service.IHistoryService
	Exports  service.IExportService

	HealthChecks   map[string]api.HealthCheck
	AllowedOrigins []string
	Registry       *prometheus.Registry
	Logger         *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.Recovery(deps.Logger),
		middleware.Logger(deps.Logger),
		middleware.CORS(deps.AllowedOrigins),
		middleware.ErrorHandler(deps.Logger),
	)
	if deps.Registry != nil {
		router.Use(middleware.Metrics(deps.Registry))
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	healthHandler := api.NewHealthHandler(deps.HealthChecks)
	router.GET("/health", healthHandler.Health)
	router.GET("/api/health", healthHandler.Health)

	gatewayHandler := api.NewGatewayHandler(deps.Gateway)
	authHandler := api.NewAuthHandler(deps.Auth, deps.Profiles)
	recipeHandler := api.NewRecipeHandler(deps.Recipes, deps.Exports, deps.History)

	optionalAuth := middleware.OptionalAuth(deps.Auth)

	// Generation aliases kept for existing clients
	router.POST("/generate-recipe", optionalAuth, gatewayHandler.Generate)
	router.POST("/api/recipes/generate", optionalAuth, gatewayHandler.Generate)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.POST("/recipes/generate", optionalAuth, gatewayHandler.Generate)

	authHandler.RegisterRoutes(v1)

	// Protected routes
	recipes := v1.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(deps.Auth))
	recipeHandler.RegisterRoutes(recipes)

	return router
}
