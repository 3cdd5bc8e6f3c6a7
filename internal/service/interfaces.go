package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/internal/models"
	"github.com/pageza/masterchef/backend/internal/session"
	"github.com/pageza/masterchef/backend/pkg/types"
)

// IRecipeGateway turns an ingredient list into a markdown recipe
type IRecipeGateway interface {
	Generate(ctx context.Context, req *types.GenerateRecipeRequest, ownerID *uuid.UUID) (string, error)
}

// IRecipeService defines the saved recipe operations. Every call is scoped
// to ownerID.
type IRecipeService interface {
	Create(ctx context.Context, ownerID *uuid.UUID, markdown string, ingredients []string) (uuid.UUID, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, query string) ([]*models.SavedRecipe, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.SavedRecipe, error)
	SetFavorite(ctx context.Context, ownerID, id uuid.UUID, value bool) error
	SetNotes(ctx context.Context, ownerID, id uuid.UUID, notes string) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*Session, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan session.Event, func())
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	CreateProfile(ctx context.Context, userID uuid.UUID, email string) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// IHistoryService records and summarises gateway calls
type IHistoryService interface {
	Record(ctx context.Context, generation *models.RecipeGeneration) error
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.RecipeGeneration, error)
	Metrics(ctx context.Context, ownerID uuid.UUID) (*types.GenerationMetrics, error)
}

// IExportService publishes a saved recipe as a downloadable document
type IExportService interface {
	Export(ctx context.Context, ownerID, id uuid.UUID) (*types.ExportResponse, error)
	Remove(ctx context.Context, ownerID, id uuid.UUID) error
}

// ObjectStore is the subset of S3 used for exports
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}
