package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/masterchef/backend/internal/middleware"
	"github.com/pageza/masterchef/backend/internal/render"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/pkg/types"
)

// RecipeHandler serves the signed-in user's saved recipes
type RecipeHandler struct {
	recipes service.IRecipeService
	exports service.IExportService
	history service.IHistoryService
}

func NewRecipeHandler(recipes service.IRecipeService, exports service.IExportService, history service.IHistoryService) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		exports: exports,
		history: history,
	}
}

// RegisterRoutes mounts the recipe routes on a group that already
// requires authentication
func (h *RecipeHandler) RegisterRoutes(recipes *gin.RouterGroup) {
	recipes.POST("", h.CreateRecipe)
	recipes.GET("", h.ListRecipes)
	recipes.GET("/history", h.ListHistory)
	recipes.GET("/metrics", h.GetMetrics)
	recipes.GET("/:id", h.GetRecipe)
	recipes.GET("/:id/render", h.RenderRecipe)
	recipes.PUT("/:id/favorite", h.SetFavorite)
	recipes.PUT("/:id/notes", h.SetNotes)
	recipes.POST("/:id/export", h.ExportRecipe)
	recipes.DELETE("/:id", h.DeleteRecipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.SaveRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	ownerID, _ := middleware.UserID(c)

	id, err := h.recipes.Create(c.Request.Context(), &ownerID, *req.Content, req.Ingredients)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.CreatedResponse{ID: id})
}

// ListRecipes returns the caller's recipes newest first, optionally
// filtered by ?q=
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ownerID, _ := middleware.UserID(c)

	recipes, err := h.recipes.ListByOwner(c.Request.Context(), ownerID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ownerID, _ := middleware.UserID(c)

	recipe, err := h.recipes.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// RenderRecipe returns the recipe body as styled HTML
func (h *RecipeHandler) RenderRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ownerID, _ := middleware.UserID(c)

	recipe, err := h.recipes.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	html, err := render.Markdown(recipe.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *RecipeHandler) SetFavorite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.SetFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}
	ownerID, _ := middleware.UserID(c)

	if err := h.recipes.SetFavorite(c.Request.Context(), ownerID, id, *req.IsFavorite); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) SetNotes(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.SetNotesRequest
	if !bindJSON(c, &req) {
		return
	}
	ownerID, _ := middleware.UserID(c)

	if err := h.recipes.SetNotes(c.Request.Context(), ownerID, id, *req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteRecipe succeeds whether or not the recipe exists
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ownerID, _ := middleware.UserID(c)

	if err := h.recipes.Delete(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ExportRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ownerID, _ := middleware.UserID(c)

	export, err := h.exports.Export(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, export)
}

func (h *RecipeHandler) ListHistory(c *gin.Context) {
	ownerID, _ := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	generations, err := h.history.List(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generations": generations})
}

func (h *RecipeHandler) GetMetrics(c *gin.Context) {
	ownerID, _ := middleware.UserID(c)

	metrics, err := h.history.Metrics(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}
