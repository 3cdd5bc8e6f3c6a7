package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/pkg/types"
)

const (
	userIDKey = "user_id"
	claimsKey = "claims"
	tokenKey  = "token"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c, false)
		if !ok {
			abortWithError(c, apperrors.New(apperrors.NotAuthenticated, "missing or malformed authorization header"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		setIdentity(c, token, claims)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return optionalAuth(validator, false)
}

// StreamAuth is OptionalAuth for event streams. EventSource cannot set
// headers, so the token may also come from the access_token query parameter.
func StreamAuth(validator TokenValidator) gin.HandlerFunc {
	return optionalAuth(validator, true)
}

func optionalAuth(validator TokenValidator, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c, allowQuery); ok {
			if claims, err := validator.ValidateToken(token); err == nil {
				setIdentity(c, token, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, if any
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Claims returns the validated token claims, if any
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}

// Token returns the raw bearer token of an authenticated request
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func setIdentity(c *gin.Context, token string, claims *types.TokenClaims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(claimsKey, claims)
	c.Set(tokenKey, token)
}

func bearerToken(c *gin.Context, allowQuery bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); allowQuery && token != "" {
			return token, true
		}
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
