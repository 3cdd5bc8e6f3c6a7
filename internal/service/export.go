package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/pkg/types"
)

// ExportURLExpiry is how long an export link stays valid
const ExportURLExpiry = 15 * time.Minute

// RecipeGetter loads a single owner-scoped recipe
type RecipeGetter interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.SavedRecipe, error)
}

// ExportService publishes saved recipes as JSON documents in object storage
type ExportService struct {
	recipes RecipeGetter
	store   ObjectStore
	logger  *zap.Logger
	now     func() time.Time
}

// Ensure ExportService implements IExportService
var _ IExportService = (*ExportService)(nil)

// NewExportService creates an export service. A nil store disables exports.
func NewExportService(recipes RecipeGetter, store ObjectStore, logger *zap.Logger) *ExportService {
	return &ExportService{
		recipes: recipes,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

type exportDocument struct {
	*models.SavedRecipe
	ExportedAt time.Time `json:"exportedAt"`
}

// Export uploads the recipe and returns a presigned download URL
func (s *ExportService) Export(ctx context.Context, ownerID, id uuid.UUID) (*types.ExportResponse, error) {
	if s.store == nil {
		return nil, apperrors.New(apperrors.Unconfigured, "recipe export is not configured")
	}

	recipe, err := s.recipes.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	body, err := json.MarshalIndent(exportDocument{SavedRecipe: recipe, ExportedAt: now}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := ExportKey(ownerID, id)
	if err := s.store.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamFailure, "failed to upload export", err)
	}

	url, err := s.store.GeneratePresignedURL(ctx, key, ExportURLExpiry)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamFailure, "failed to sign export link", err)
	}

	s.logger.Info("recipe exported",
		zap.String("recipe_id", id.String()),
		zap.String("key", key),
	)
	return &types.ExportResponse{URL: url, ExpiresAt: now.Add(ExportURLExpiry)}, nil
}

// Remove deletes the export object, if any
func (s *ExportService) Remove(ctx context.Context, ownerID, id uuid.UUID) error {
	if s.store == nil {
		return nil
	}
	return s.store.DeleteObject(ctx, ExportKey(ownerID, id))
}

// ExportKey is the object key for a recipe export
func ExportKey(ownerID, id uuid.UUID) string {
	return fmt.Sprintf("exports/%s/%s.json", ownerID, id)
}
