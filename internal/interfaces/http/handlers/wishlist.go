// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlist *wishlist.Service
	logger   *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(service *wishlist.Service, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{wishlist: service, logger: logger}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	page, limit := pageParams(c)

	response, err := h.wishlist.GetWishlist(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.fail(c, err, "Failed to retrieve wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    response,
	})
}

// AddToWishlist handles POST /wishlist
func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req wishlist.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	item, err := h.wishlist.AddToWishlist(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err, "Failed to add item to wishlist")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to wishlist successfully",
		"data":    item,
	})
}

// RemoveFromWishlist handles DELETE /wishlist/:product_id
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	productID, ok := parseID(c, "product_id", "product ID")
	if !ok {
		return
	}

	err := h.wishlist.RemoveFromWishlist(c.Request.Context(), userID, productID, optionalUintQuery(c, "variant_id"))
	if err != nil {
		h.fail(c, err, "Failed to remove item from wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from wishlist successfully",
	})
}

// GetWishlistCount handles GET /wishlist/count
func (h *WishlistHandler) GetWishlistCount(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	count, err := h.wishlist.GetWishlistCount(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "Failed to get wishlist count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist count retrieved successfully",
		"data":    gin.H{"count": count},
	})
}

// MoveToCart handles POST /wishlist/:product_id/move-to-cart
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	productID, ok := parseID(c, "product_id", "product ID")
	if !ok {
		return
	}

	var req wishlist.MoveToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}
	}

	response, err := h.wishlist.MoveToCart(c.Request.Context(), userID, productID, &req)
	if err != nil {
		h.fail(c, err, "Failed to move item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item moved to cart successfully",
		"data":    response,
	})
}

func (h *WishlistHandler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, wishlist.ErrItemNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, wishlist.ErrItemExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, product.ErrVariantNotFound):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error(message)
		respondError(c, http.StatusInternalServerError, message)
	}
}
