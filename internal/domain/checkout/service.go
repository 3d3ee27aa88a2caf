// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

// ProfileSource supplies the signed-in user's details for pre-filling the form
type ProfileSource interface {
	CheckoutProfile(ctx context.Context, userID uint) (*user.Profile, error)
}

// PaymentOption describes a selectable payment method
type PaymentOption struct {
	ID    PaymentMethod `json:"id"`
	Label string        `json:"label"`
}

// Page is everything the checkout view renders
type Page struct {
	Form                 CustomerForm    `json:"form"`
	Lines                []cart.Line     `json:"lines"`
	Pricing              pricing.Result  `json:"pricing"`
	AmountToFreeShipping int64           `json:"amount_to_free_shipping"`
	PaymentMethods       []PaymentOption `json:"payment_methods"`
	Notice               *Notice         `json:"notice,omitempty"`
	Redirect             *Redirect       `json:"redirect,omitempty"`
}

// Service backs the checkout endpoints
type Service struct {
	carts        CartStore
	profiles     ProfileSource
	validator    *FormValidator
	orchestrator *Orchestrator
	rule         pricing.Rule
	logger       *logrus.Logger
}

// NewService creates a new checkout service
func NewService(carts CartStore, profiles ProfileSource, validator *FormValidator, orchestrator *Orchestrator, rule pricing.Rule, logger *logrus.Logger) *Service {
	return &Service{
		carts:        carts,
		profiles:     profiles,
		validator:    validator,
		orchestrator: orchestrator,
		rule:         rule,
		logger:       logger,
	}
}

// Prepare builds the checkout page for the user. An empty cart yields a
// notice and a redirect to the product listing instead of a form.
func (s *Service) Prepare(ctx context.Context, userID uint) (*Page, error) {
	contents, err := s.carts.Contents(ctx, cart.UserOwner(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	lines := contents.Lines

	page := &Page{
		Lines:          lines,
		PaymentMethods: paymentOptions(),
	}
	if len(lines) == 0 {
		page.Lines = []cart.Line{}
		page.Form = FormFromProfile(nil)
		notice := emptyCartNotice(contents.Unavailable)
		page.Notice = &notice
		page.Redirect = newRedirect(RouteProducts, 0)
		return page, nil
	}

	profile, err := s.profiles.CheckoutProfile(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("checkout profile unavailable")
	}
	page.Form = FormFromProfile(profile)

	if contents.Unavailable > 0 {
		page.Notice = &Notice{Level: NoticeInfo, Message: unavailableNotice(contents.Unavailable)}
	}

	page.Pricing = s.rule.Evaluate(cart.PricingLines(lines))
	page.AmountToFreeShipping = s.rule.AmountToFreeShipping(page.Pricing.Subtotal)
	return page, nil
}

// Validate checks the form without submitting it
func (s *Service) Validate(form CustomerForm) ValidationResult {
	return s.validator.Validate(form)
}

// Submit places the order through the orchestrator
func (s *Service) Submit(ctx context.Context, userID uint, form CustomerForm, notifier Notifier, nav Navigator) (*Result, error) {
	return s.orchestrator.Submit(ctx, userID, form, notifier, nav)
}

// State returns the user's submission state
func (s *Service) State(userID uint) State {
	return s.orchestrator.State(userID)
}

func unavailableNotice(n int) string {
	if n == 1 {
		return "1 item in your cart is no longer available and will not be ordered"
	}
	return fmt.Sprintf("%d items in your cart are no longer available and will not be ordered", n)
}

func paymentOptions() []PaymentOption {
	options := make([]PaymentOption, len(PaymentMethods))
	for i, m := range PaymentMethods {
		options[i] = PaymentOption{ID: m, Label: m.Label()}
	}
	return options
}
