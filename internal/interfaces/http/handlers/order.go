// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order history endpoints
type OrderHandler struct {
	orders *order.Service
	logger *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// GetOrders handles GET /orders (user's own orders)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	page, limit := pageParams(c)

	response, err := h.orders.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.fail(c, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    response,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.fail(c, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// CancelOrder handles PUT /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"max=500"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}
	}

	o, err := h.orders.CancelOrder(c.Request.Context(), userID, orderID, req.Reason)
	if err != nil {
		h.fail(c, err, "Failed to cancel order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    o,
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	var req struct {
		Status  order.OrderStatus `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
		Comment string            `json:"comment" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	o, err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, req.Status, req.Comment, adminID)
	if err != nil {
		h.fail(c, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    o,
	})
}

func (h *OrderHandler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrCannotCancel), errors.Is(err, order.ErrInvalidStatusTransition):
		respondError(c, http.StatusConflict, err.Error())
	default:
		h.logger.WithError(err).Error(message)
		respondError(c, http.StatusInternalServerError, message)
	}
}
