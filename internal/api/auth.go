package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/masterchef/backend/internal/apperrors"
	"github.com/pageza/masterchef/backend/internal/middleware"
	"github.com/pageza/masterchef/backend/internal/service"
	"github.com/pageza/masterchef/backend/internal/session"
	"github.com/pageza/masterchef/backend/pkg/types"
)

const defaultKeepAlive = 25 * time.Second

// AuthHandler serves sign-up, sign-in, sign-out and the session stream
type AuthHandler struct {
	auth      service.IAuthService
	profiles  service.IProfileService
	keepAlive time.Duration
}

func NewAuthHandler(auth service.IAuthService, profiles service.IProfileService) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		profiles:  profiles,
		keepAlive: defaultKeepAlive,
	}
}

// RegisterRoutes mounts the auth and profile routes under v1
func (h *AuthHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/signin", h.SignIn)
		auth.POST("/signout", required, h.SignOut)
		auth.POST("/refresh", required, h.Refresh)
		auth.GET("/me", required, h.Me)
		auth.GET("/session", middleware.StreamAuth(h.auth), h.Session)
	}

	v1.GET("/profile", required, h.GetProfile)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req types.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(sess))
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req types.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middleware.Token(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh swaps the bearer token for a new one; the old token stops working
func (h *AuthHandler) Refresh(c *gin.Context) {
	sess, err := h.auth.Refresh(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// Me returns the identity carried by the bearer token
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		respondError(c, apperrors.New(apperrors.NotAuthenticated, "not signed in"))
		return
	}
	c.JSON(http.StatusOK, claims.Identity())
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	profile, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Session streams identity changes as server-sent events. The first event
// is always the current identity, or null for anonymous callers, whose
// stream ends right after it. Authenticated streams end once this token
// has been signed out or the client goes away.
func (h *AuthHandler) Session(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	claims, ok := middleware.Claims(c)
	if !ok {
		c.SSEvent("identity", "null")
		c.Writer.Flush()
		return
	}

	// The stream outlives the server write timeout; writers without
	// deadline support keep it
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	ctx := c.Request.Context()
	// Subscribe before sending the identity so no change is missed in between
	events, cancel := h.auth.Subscribe(ctx, claims.UserID)
	defer cancel()

	c.SSEvent("identity", claims.Identity())
	c.Writer.Flush()

	token := middleware.Token(c)
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(event.Type), event)
			c.Writer.Flush()
			if event.Type == session.SignedOut {
				if _, err := h.auth.ValidateToken(token); err != nil {
					return
				}
			}
		}
	}
}

func sessionResponse(sess *service.Session) types.SessionResponse {
	return types.SessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	}
}
