package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/internal/middleware"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/pkg/types"
)

// GatewayHandler exposes the model gateway
type GatewayHandler struct {
	gateway service.IRecipeGateway
}

func NewGatewayHandler(gateway service.IRecipeGateway) *GatewayHandler {
	return &GatewayHandler{gateway: gateway}
}

// Generate handles POST /generate-recipe and its aliases. Authentication is
// optional; a signed-in caller has the generation attributed to them.
func (h *GatewayHandler) Generate(c *gin.Context) {
	var req types.GenerateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	var owner *uuid.UUID
	if id, ok := middleware.UserID(c); ok {
		owner = &id
	}

	recipe, err := h.gateway.Generate(c.Request.Context(), &req, owner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.GenerateRecipeResponse{Recipe: recipe})
}
