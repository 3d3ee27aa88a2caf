// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextIsAdmin   = "is_admin"
)

// bearerOrCookie reads the access token from the Authorization header, falling
// back to the session cookie set at login.
func bearerOrCookie(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractTokenFromHeader(header)
	}
	if token, err := c.Cookie(cookieName); err == nil {
		return token
	}
	return ""
}

// AuthMiddleware requires a valid access token. Unauthenticated requests are
// answered with 401 and the login route to navigate to.
func AuthMiddleware(cfg *config.Config, jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerOrCookie(c, cfg.Session.TokenCookie)
		if tokenString == "" {
			unauthorized(c, "Authentication required")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the user when a valid token is present
// and lets anonymous requests through.
func OptionalAuthMiddleware(cfg *config.Config, jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerOrCookie(c, cfg.Session.TokenCookie); tokenString != "" {
			if claims, err := jwtManager.ValidateAccessToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); !ok {
			unauthorized(c, "Authentication required")
			return
		}

		if !IsAdminFromContext(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}

		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextIsAdmin, claims.IsAdmin)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"redirect": gin.H{
			"route":    checkout.RouteLogin,
			"delay_ms": 0,
		},
	})
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmailFromContext extracts user email from gin context
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get(ContextUserEmail)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}
