// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// AuthHandler handles authentication and profile endpoints
type AuthHandler struct {
	users    *user.Service
	carts    *cart.Service
	sessions *Sessions
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, carts *cart.Service, sessions *Sessions, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		carts:    carts,
		sessions: sessions,
		logger:   logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	response, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			respondError(c, http.StatusConflict, err.Error())
		case errors.Is(err, user.ErrPasswordMismatch), errors.Is(err, auth.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.WithError(err).Error("registration failed")
			respondError(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	h.startSession(c, response)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    response,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	response, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.WithError(err).Error("login failed")
		respondError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	h.startSession(c, response)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    response,
	})
}

// startSession sets the session cookie and moves the guest cart into the
// user's cart. A failed merge leaves the guest cart in place.
func (h *AuthHandler) startSession(c *gin.Context, response *user.AuthResponse) {
	h.sessions.SetToken(c, response.AccessToken)

	guestID := h.sessions.ExistingGuestID(c)
	if guestID == "" {
		return
	}
	if err := h.carts.MergeGuestCartToUser(c.Request.Context(), response.User.ID, guestID); err != nil {
		h.logger.WithError(err).WithField("user_id", response.User.ID).Warn("failed to merge guest cart")
		return
	}
	h.sessions.ClearGuest(c)
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	response, err := h.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	h.sessions.SetToken(c, response.AccessToken)
	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data":    response,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearToken(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetProfile handles GET /auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

// SaveAddress handles POST /users/addresses
func (h *AuthHandler) SaveAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	address, err := h.users.SaveAddress(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to save address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address saved successfully",
		"data":    address,
	})
}
