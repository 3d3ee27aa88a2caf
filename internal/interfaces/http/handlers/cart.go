// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartHandler handles cart endpoints for signed-in users and guest sessions
type CartHandler struct {
	carts    *cart.Service
	sessions *Sessions
	logger   *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, sessions *Sessions, logger *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, sessions: sessions, logger: logger}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	response, err := h.carts.GetCart(c.Request.Context(), h.sessions.Owner(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    response,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	response, err := h.carts.AddToCart(c.Request.Context(), h.sessions.Owner(c), &req)
	if err != nil {
		h.fail(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    response,
	})
}

// UpdateCartItem handles PUT /cart/items/:id where id is the product ID
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseID(c, "id", "product ID")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if req.ProductVariantID == nil {
		req.ProductVariantID = optionalUintQuery(c, "variant_id")
	}

	response, err := h.carts.UpdateCartItem(c.Request.Context(), h.sessions.Owner(c), productID, &req)
	if err != nil {
		h.fail(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    response,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "id", "product ID")
	if !ok {
		return
	}

	response, err := h.carts.RemoveFromCart(c.Request.Context(), h.sessions.Owner(c), productID, optionalUintQuery(c, "variant_id"))
	if err != nil {
		h.fail(c, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    response,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context(), h.sessions.Owner(c)); err != nil {
		h.fail(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.carts.GetCartItemCount(c.Request.Context(), h.sessions.Owner(c))
	if err != nil {
		h.fail(c, err, "Failed to get cart count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data":    gin.H{"count": count},
	})
}

func (h *CartHandler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, product.ErrVariantNotFound):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error(message)
		respondError(c, http.StatusInternalServerError, message)
	}
}
