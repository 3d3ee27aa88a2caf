// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout page and order submission
type CheckoutHandler struct {
	checkout *checkout.Service
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *checkout.Service, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: service, logger: logger}
}

// httpSession collects the notices the orchestrator shows during one request
// so they can be returned in the response.
type httpSession struct {
	notices []checkout.Notice
}

func (s *httpSession) Notify(n checkout.Notice) {
	s.notices = append(s.notices, n)
}

// Navigate is a no-op: the client follows the redirect in the response body
// after the delay it carries.
func (s *httpSession) Navigate(string) {}

func (s *httpSession) notice() *checkout.Notice {
	if len(s.notices) == 0 {
		return nil
	}
	n := s.notices[len(s.notices)-1]
	return &n
}

// GetCheckout handles GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	page, err := h.checkout.Prepare(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("failed to prepare checkout")
		respondError(c, http.StatusInternalServerError, "Failed to load checkout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Checkout retrieved successfully",
		"data":     page,
		"notice":   page.Notice,
		"redirect": page.Redirect,
	})
}

// ValidateForm handles POST /checkout/validate
func (h *CheckoutHandler) ValidateForm(c *gin.Context) {
	var form checkout.CustomerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondInvalid(c, err)
		return
	}

	result := h.checkout.Validate(form)
	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout form validated",
		"data":    result,
	})
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var form checkout.CustomerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondInvalid(c, err)
		return
	}

	session := &httpSession{}
	result, err := h.checkout.Submit(c.Request.Context(), userID, form, session, session)
	if err != nil {
		h.submitFailed(c, session, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully",
		"data":     result,
		"notice":   session.notice(),
		"redirect": result.Redirect,
	})
}

func (h *CheckoutHandler) submitFailed(c *gin.Context, session *httpSession, err error) {
	body := gin.H{
		"error":  err.Error(),
		"notice": session.notice(),
	}

	var validationErr *checkout.ValidationError
	var submissionErr *checkout.OrderSubmissionError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
		body["error"] = "Please correct the highlighted fields"
		body["field_errors"] = validationErr.FieldMap()
	case errors.Is(err, checkout.ErrSubmissionInProgress), errors.Is(err, order.ErrSubmissionInFlight):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body["error"] = "Order submission timed out"
	case errors.As(err, &submissionErr):
		body["error"] = "Order submission failed"
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("checkout submission failed")
	}
	c.JSON(status, body)
}
