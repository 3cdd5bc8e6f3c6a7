package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/internal/pantry"
)

// ExportCleaner removes published copies of a recipe
type ExportCleaner interface {
	Remove(ctx context.Context, ownerID, id uuid.UUID) error
}

// RecipeService handles saved recipe operations. Each field update is an
// independent last-write-wins write; nothing spans two fields.
type RecipeService struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
	exports ExportCleaner
}

// Ensure RecipeService implements IRecipeService
var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:      db,
		metrics: metrics,
		logger:  logger,
	}
}

// SetExportCleaner makes Delete also remove exported copies
func (s *RecipeService) SetExportCleaner(exports ExportCleaner) {
	s.exports = exports
}

// Create saves a generated recipe and returns its id
func (s *RecipeService) Create(ctx context.Context, ownerID *uuid.UUID, markdown string, ingredients []string) (uuid.UUID, error) {
	if ownerID == nil || *ownerID == uuid.Nil {
		return uuid.Nil, apperrors.New(apperrors.NotAuthenticated, "sign in to save recipes")
	}

	snapshot := make(models.JSONStringArray, len(ingredients))
	copy(snapshot, ingredients)

	recipe := &models.SavedRecipe{
		OwnerID:     *ownerID,
		Content:     markdown,
		Title:       ExtractTitle(markdown),
		Ingredients: snapshot,
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	s.metrics.recipeSaved()
	s.logger.Info("recipe saved",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("title", recipe.Title),
	)
	return recipe.ID, nil
}

// ListByOwner returns the owner's recipes, newest first. A non-empty query
// keeps only recipes whose title or ingredients contain it.
func (s *RecipeService) ListByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]*models.SavedRecipe, error) {
	var recipes []*models.SavedRecipe
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return pantry.Filter(recipes, query, func(r *models.SavedRecipe) []string {
		return append([]string{r.Title}, r.Ingredients...)
	}), nil
}

// Get returns one recipe. Another owner's recipe reads as missing.
func (s *RecipeService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.SavedRecipe, error) {
	var recipe models.SavedRecipe
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.NotFound, "recipe not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// SetFavorite overwrites the favorite flag, writing even when unchanged
func (s *RecipeService) SetFavorite(ctx context.Context, ownerID, id uuid.UUID, value bool) error {
	return s.update(ctx, ownerID, id, "is_favorite", value)
}

// SetNotes overwrites the notes; an empty string clears them
func (s *RecipeService) SetNotes(ctx context.Context, ownerID, id uuid.UUID, notes string) error {
	return s.update(ctx, ownerID, id, "notes", notes)
}

func (s *RecipeService) update(ctx context.Context, ownerID, id uuid.UUID, column string, value interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&models.SavedRecipe{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.NotFound, "recipe not found")
	}
	return nil
}

// Delete permanently removes a recipe. Deleting a missing id succeeds.
func (s *RecipeService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.SavedRecipe{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil
	}

	if s.exports != nil {
		if err := s.exports.Remove(ctx, ownerID, id); err != nil {
			s.logger.Warn("failed to remove recipe export",
				zap.String("recipe_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}
