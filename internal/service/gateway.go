package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/llm"
	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/pkg/types"
)

// DefaultSystemPrompt is the fixed instruction sent with every generation
const DefaultSystemPrompt = "You are an assistant that receives a list of ingredients that a user has and " +
	"suggests a recipe they could make with some or all of those ingredients. You don't need to use every " +
	"ingredient they mention in your recipe. The recipe can include additional ingredients they didn't " +
	"mention, but try not to include too many extra ingredients. Format your response in markdown to make " +
	"it easier to render to a web page."

const (
	defaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second
)

// GatewayConfig bounds each upstream call
type GatewayConfig struct {
	MaxTokens int
	Timeout   time.Duration
}

// GenerationRecorder persists one row per upstream call
type GenerationRecorder interface {
	Record(ctx context.Context, generation *models.RecipeGeneration) error
}

// RecipeGateway forwards ingredient lists to the model. It never retries:
// a second call could produce a different recipe at extra cost.
type RecipeGateway struct {
	completer llm.Completer
	history   GenerationRecorder
	metrics   *Metrics
	logger    *zap.Logger
	maxTokens int
	timeout   time.Duration
}

// NewRecipeGateway creates a gateway. A nil completer leaves the gateway
// unconfigured; every call then fails with apperrors.Unconfigured.
func NewRecipeGateway(completer llm.Completer, history GenerationRecorder, metrics *Metrics, logger *zap.Logger, cfg GatewayConfig) *RecipeGateway {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &RecipeGateway{
		completer: completer,
		history:   history,
		metrics:   metrics,
		logger:    logger,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

// Generate returns the model's markdown unchanged
func (g *RecipeGateway) Generate(ctx context.Context, req *types.GenerateRecipeRequest, ownerID *uuid.UUID) (string, error) {
	if req == nil {
		return "", apperrors.New(apperrors.InvalidRequest, "invalid request")
	}
	ingredients := req.Ingredients.Normalized()
	if len(ingredients) == 0 {
		return "", apperrors.New(apperrors.InvalidRequest, "invalid request: ingredients are required")
	}
	if g.completer == nil {
		return "", apperrors.New(apperrors.Unconfigured, "service unconfigured: model API key is not set")
	}

	preferences := types.IngredientList(req.DietaryPreferences).Normalized()
	prompt := llm.Prompt{
		System:    DefaultSystemPrompt,
		User:      BuildUserPrompt(ingredients, preferences),
		MaxTokens: g.maxTokens,
	}
	if custom := strings.TrimSpace(req.SystemPrompt); custom != "" {
		prompt.System = custom
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	completion, err := g.completer.Complete(callCtx, prompt)
	elapsed := time.Since(start)

	record := &models.RecipeGeneration{
		OwnerID:            ownerID,
		Ingredients:        ingredients,
		DietaryPreferences: preferences,
		Provider:           g.completer.Provider(),
		Model:              g.completer.Model(),
		Status:             models.GenerationSuccess,
		LatencyMs:          elapsed.Milliseconds(),
	}

	if err == nil && (completion == nil || strings.TrimSpace(completion.Text) == "") {
		err = llm.ErrMalformedResponse
	}
	if err != nil {
		record.Status = models.GenerationError
		record.ErrorKind = upstreamErrorKind(err)
		g.finish(ctx, record, elapsed)

		g.logger.Warn("recipe generation failed",
			zap.String("provider", record.Provider),
			zap.String("error_kind", record.ErrorKind),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		return "", apperrors.Wrap(apperrors.UpstreamFailure, "generation failed", err)
	}

	record.OutputTokens = completion.OutputTokens
	g.finish(ctx, record, elapsed)

	g.logger.Info("recipe generated",
		zap.String("provider", record.Provider),
		zap.Int("ingredients", len(ingredients)),
		zap.Int("output_tokens", completion.OutputTokens),
		zap.Duration("latency", elapsed),
	)
	return completion.Text, nil
}

// finish records the call. Failures are logged and never surfaced.
func (g *RecipeGateway) finish(ctx context.Context, record *models.RecipeGeneration, elapsed time.Duration) {
	g.metrics.observeGeneration(record.Provider, record.Status, elapsed)
	if g.history == nil {
		return
	}
	// The request context may already be cancelled after a timeout
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := g.history.Record(recordCtx, record); err != nil {
		g.logger.Error("failed to record generation", zap.Error(err))
	}
}

// BuildUserPrompt lists the ingredients, and preferences if any, as one user turn
func BuildUserPrompt(ingredients, preferences []string) string {
	var sb strings.Builder
	sb.WriteString("I have these ingredients: ")
	sb.WriteString(strings.Join(ingredients, ", "))
	sb.WriteString("\n")
	if len(preferences) > 0 {
		sb.WriteString("Dietary preferences: ")
		sb.WriteString(strings.Join(preferences, ", "))
		sb.WriteString("\n")
	}
	sb.WriteString("Please give me a recipe you'd recommend I make!")
	return sb.String()
}

func upstreamErrorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, llm.ErrUpstreamStatus):
		return "upstream_status"
	case errors.Is(err, llm.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "transport"
	}
}
