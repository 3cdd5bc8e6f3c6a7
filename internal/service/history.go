package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/pkg/types"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService stores one row per upstream generation
type HistoryService struct {
	db *gorm.DB
}

// Ensure HistoryService implements IHistoryService
var _ IHistoryService = (*HistoryService)(nil)

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

func (s *HistoryService) Record(ctx context.Context, generation *models.RecipeGeneration) error {
	if err := s.db.WithContext(ctx).Create(generation).Error; err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// List returns a page of the owner's generations, most recent first
func (s *HistoryService) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.RecipeGeneration, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var generations []*models.RecipeGeneration
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&generations).Error; err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return generations, nil
}

// Metrics summarises generations and saved recipes for the owner
func (s *HistoryService) Metrics(ctx context.Context, ownerID uuid.UUID) (*types.GenerationMetrics, error) {
	var row struct {
		Total   int64
		Failed  int64
		Latency float64
		Tokens  int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.RecipeGeneration{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS failed, "+
			"COALESCE(AVG(latency_ms), 0) AS latency, "+
			"COALESCE(SUM(output_tokens), 0) AS tokens", models.GenerationError).
		Where("owner_id = ?", ownerID).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to summarise generations: %w", err)
	}

	metrics := &types.GenerationMetrics{
		TotalGenerations:  row.Total,
		FailedGenerations: row.Failed,
		AverageLatencyMs:  row.Latency,
		TotalTokensUsed:   row.Tokens,
	}

	if err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("owner_id = ?", ownerID).
		Count(&metrics.TotalRecipesSaved).Error; err != nil {
		return nil, fmt.Errorf("failed to count saved recipes: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.SavedRecipe{}).
		Where("owner_id = ? AND is_favorite = ?", ownerID, true).
		Count(&metrics.FavoriteRecipes).Error; err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	return metrics, nil
}
