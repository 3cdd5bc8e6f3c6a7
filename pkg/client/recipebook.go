package client

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/internal/pantry"
)

// RecipeAPI is the part of Client a RecipeBook needs
type RecipeAPI interface {
	ListRecipes(ctx context.Context, query string) ([]Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error)
	SaveRecipe(ctx context.Context, content string, ingredients []string) (uuid.UUID, error)
	SetFavorite(ctx context.Context, id uuid.UUID, value bool) error
	SetNotes(ctx context.Context, id uuid.UUID, notes string) error
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
}

// RecipeBook caches the signed-in user's saved recipes. Edits are applied
// locally first and rolled back if the server rejects them.
type RecipeBook struct {
	api     RecipeAPI
	mu      sync.Mutex
	recipes []Recipe
}

func NewRecipeBook(api RecipeAPI) *RecipeBook {
	return &RecipeBook{api: api}
}

// Refresh replaces the cache with the server's list, newest first
func (b *RecipeBook) Refresh(ctx context.Context) error {
	recipes, err := b.api.ListRecipes(ctx, "")
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.recipes = recipes
	b.mu.Unlock()
	return nil
}

// Recipes returns a copy of the cache
func (b *RecipeBook) Recipes() []Recipe {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Recipe, len(b.recipes))
	copy(out, b.recipes)
	return out
}

// Search filters the cache by title and ingredients, case-insensitively
func (b *RecipeBook) Search(query string) []Recipe {
	return pantry.Filter(b.Recipes(), query, func(r Recipe) []string {
		return append([]string{r.Title}, r.Ingredients...)
	})
}

// Save stores a generated recipe and puts it at the top of the cache
func (b *RecipeBook) Save(ctx context.Context, content string, ingredients []string) (*Recipe, error) {
	id, err := b.api.SaveRecipe(ctx, content, ingredients)
	if err != nil {
		return nil, err
	}
	recipe, err := b.api.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.recipes = append([]Recipe{*recipe}, b.recipes...)
	b.mu.Unlock()
	return recipe, nil
}

// ToggleFavorite flips the favorite flag and returns the new value
func (b *RecipeBook) ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error) {
	var value bool
	err := b.optimistic(ctx, id, func(r *Recipe) {
		r.IsFavorite = !r.IsFavorite
		value = r.IsFavorite
	}, func(ctx context.Context) error {
		return b.api.SetFavorite(ctx, id, value)
	})
	return value, err
}

func (b *RecipeBook) SetNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return b.optimistic(ctx, id, func(r *Recipe) {
		r.Notes = notes
	}, func(ctx context.Context) error {
		return b.api.SetNotes(ctx, id, notes)
	})
}

// Delete removes the recipe from the cache and the server. A recipe the
// cache does not know is still deleted on the server.
func (b *RecipeBook) Delete(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	idx := b.indexLocked(id)
	var removed Recipe
	if idx >= 0 {
		removed = b.recipes[idx]
		b.recipes = append(b.recipes[:idx:idx], b.recipes[idx+1:]...)
	}
	b.mu.Unlock()

	if err := b.api.DeleteRecipe(ctx, id); err != nil {
		if idx >= 0 {
			b.mu.Lock()
			pos := idx
			if pos > len(b.recipes) {
				pos = len(b.recipes)
			}
			b.recipes = append(b.recipes[:pos], append([]Recipe{removed}, b.recipes[pos:]...)...)
			b.mu.Unlock()
		}
		return err
	}
	return nil
}

// optimistic applies change to the cached recipe, then calls remote and
// restores the previous copy if it fails. A recipe missing from the cache
// is fetched first so change starts from the server's state.
func (b *RecipeBook) optimistic(ctx context.Context, id uuid.UUID, change func(*Recipe), remote func(context.Context) error) error {
	b.mu.Lock()
	idx := b.indexLocked(id)
	if idx < 0 {
		b.mu.Unlock()
		current, err := b.api.GetRecipe(ctx, id)
		if err != nil {
			return err
		}
		change(current)
		return remote(ctx)
	}
	previous := b.recipes[idx]
	change(&b.recipes[idx])
	b.mu.Unlock()

	if err := remote(ctx); err != nil {
		b.mu.Lock()
		if i := b.indexLocked(id); i >= 0 {
			b.recipes[i] = previous
		}
		b.mu.Unlock()
		return err
	}
	return nil
}

func (b *RecipeBook) indexLocked(id uuid.UUID) int {
	for i := range b.recipes {
		if b.recipes[i].ID == id {
			return i
		}
	}
	return -1
}
