// internal/interfaces/http/handlers/helpers.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// parseID reads a positive numeric path parameter and answers 400 when it is not one
func parseID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+label)
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery reads an optional numeric query parameter such as variant_id
func optionalUintQuery(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}

// Sessions manages the cookies identifying the shopper
type Sessions struct {
	cfg config.SessionConfig
	ttl int
}

// NewSessions creates the cookie helper. tokenTTL is the lifetime of the
// session token cookie in seconds.
func NewSessions(cfg config.SessionConfig, tokenTTL int) *Sessions {
	return &Sessions{cfg: cfg, ttl: tokenTTL}
}

// GuestID returns the guest session id, issuing a new cookie when absent
func (s *Sessions) GuestID(c *gin.Context) string {
	sessionID, err := c.Cookie(s.cfg.GuestCookie)
	if err == nil && sessionID != "" {
		return sessionID
	}
	sessionID = uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.GuestCookie, sessionID, int(s.cfg.GuestCartTTL.Seconds()), "/", s.cfg.CookieDomain, s.cfg.SecureCookie, true)
	return sessionID
}

// ExistingGuestID returns the guest session id without creating one
func (s *Sessions) ExistingGuestID(c *gin.Context) string {
	sessionID, _ := c.Cookie(s.cfg.GuestCookie)
	return sessionID
}

// Owner resolves whose cart the request addresses
func (s *Sessions) Owner(c *gin.Context) cart.Owner {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.UserOwner(userID)
	}
	return cart.GuestOwner(s.GuestID(c))
}

// SetToken stores the access token in the session cookie
func (s *Sessions) SetToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.TokenCookie, token, s.ttl, "/", s.cfg.CookieDomain, s.cfg.SecureCookie, true)
}

// ClearToken removes the session cookie
func (s *Sessions) ClearToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.TokenCookie, "", -1, "/", s.cfg.CookieDomain, s.cfg.SecureCookie, true)
}

// ClearGuest removes the guest session cookie
func (s *Sessions) ClearGuest(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.GuestCookie, "", -1, "/", s.cfg.CookieDomain, s.cfg.SecureCookie, true)
}
