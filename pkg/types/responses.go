package types

import (
	"time"

	"github.com/google/uuid"
)

// GenerateRecipeResponse wraps the model's raw markdown
type GenerateRecipeResponse struct {
	Recipe string `json:"recipe"`
}

// CreatedResponse returns the id of a new document
type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

// SessionResponse is returned by sign-up and sign-in
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Identity  `json:"user"`
}

// ExportResponse carries a presigned download link
type ExportResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GenerationMetrics summarises an owner's activity
type GenerationMetrics struct {
	TotalGenerations  int64   `json:"totalGenerations"`
	FailedGenerations int64   `json:"failedGenerations"`
	TotalRecipesSaved int64   `json:"totalRecipesSaved"`
	FavoriteRecipes   int64   `json:"favoriteRecipes"`
	AverageLatencyMs  float64 `json:"averageLatencyMs"`
	TotalTokensUsed   int64   `json:"totalTokensUsed"`
}
