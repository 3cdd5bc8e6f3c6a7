package types

import (
	"encoding/json"
	"errors"
	"strings"
)

// IngredientList accepts either a JSON array of strings or a single
// comma-separated string.
type IngredientList []string

func (l *IngredientList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return errors.New("ingredients must be a string or an array of strings")
	}
	*l = strings.Split(single, ",")
	return nil
}

// Normalized trims every entry and drops empty ones
func (l IngredientList) Normalized() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GenerateRecipeRequest is the Model Gateway request body
type GenerateRecipeRequest struct {
	Ingredients        IngredientList `json:"ingredients"`
	DietaryPreferences []string       `json:"dietaryPreferences"`
	SystemPrompt       string         `json:"systemPrompt"`
}

// SaveRecipeRequest persists a generated recipe. Content may be empty but
// not absent. Ingredients is a snapshot of whatever the gateway was sent.
type SaveRecipeRequest struct {
	Content     *string  `json:"content" binding:"required"`
	Ingredients []string `json:"ingredients" binding:"omitempty,max=100,dive,max=200"`
}

// SetFavoriteRequest overwrites the favorite flag
type SetFavoriteRequest struct {
	IsFavorite *bool `json:"isFavorite" binding:"required"`
}

// SetNotesRequest overwrites the notes; an empty string clears them
type SetNotesRequest struct {
	Notes *string `json:"notes" binding:"required"`
}

// CredentialsRequest is used by sign-up and sign-in
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
