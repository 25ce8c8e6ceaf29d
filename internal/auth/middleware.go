package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/config"
	"github.com/mrlokans/reading-tracker/internal/database"
	"github.com/mrlokans/reading-tracker/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type" // "bearer" or "none"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service     *Service
	config      config.Auth
	log         *zap.Logger
	publicPaths map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, cfg config.Auth, log *zap.Logger) *Middleware {
	return &Middleware{
		service: service,
		config:  cfg,
		log:     log,
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
		},
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode != config.AuthModeToken {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

// noAuthHandler injects the local user for all requests when auth is disabled.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, database.DefaultUserID)
		c.Set(ContextKeyUsername, database.DefaultUsername)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		user, err := m.service.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenExpired) {
				m.log.Error("token lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error":     "authentication backend unavailable",
					"retryable": true,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		setUserContext(c, user)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func setUserContext(c *gin.Context, user *entities.User) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyAuthType, AuthTypeBearer)
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if no user was resolved.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
