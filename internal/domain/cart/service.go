// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"golang.org/x/sync/singleflight"
)

// ProductResolver looks up the active product and variant a cart line refers to
type ProductResolver interface {
	Resolve(ctx context.Context, productID uint, variantID *uint) (*product.Product, *product.ProductVariant, error)
}

// Service handles cart business logic. User carts and guest carts live in
// separate repositories.
type Service struct {
	users    Repository
	guests   Repository
	products ProductResolver
	rule     pricing.Rule
	logger   *logrus.Logger
	reads    singleflight.Group
}

// NewService creates a new cart service
func NewService(users, guests Repository, products ProductResolver, rule pricing.Rule, logger *logrus.Logger) *Service {
	return &Service{
		users:    users,
		guests:   guests,
		products: products,
		rule:     rule,
		logger:   logger,
	}
}

func (s *Service) repo(owner Owner) Repository {
	if owner.IsGuest() {
		return s.guests
	}
	return s.users
}

// items reads the stored lines. Concurrent reads of the same cart share one
// repository call.
func (s *Service) items(ctx context.Context, owner Owner) ([]Item, error) {
	v, err, _ := s.reads.Do(owner.Key(), func() (interface{}, error) {
		return s.repo(owner).Items(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

// GetCart retrieves the cart with product details and totals
func (s *Service) GetCart(ctx context.Context, owner Owner) (*CartResponse, error) {
	items, err := s.items(ctx, owner)
	if err != nil {
		return nil, err
	}

	responses := make([]CartItemResponse, 0, len(items))
	var lines []Line
	for _, item := range items {
		resp := CartItemResponse{
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			Price:            item.Price,
			AddedAt:          item.AddedAt,
		}

		line, prod, variant, err := s.resolve(ctx, item)
		switch {
		case err == nil:
			resp.Available = true
			resp.Price = line.UnitPrice
			resp.Product = prod
			resp.ProductVariant = variant
			lines = append(lines, line)
		case isUnavailable(err):
		default:
			return nil, err
		}
		responses = append(responses, resp)
	}

	return &CartResponse{
		SessionID: owner.SessionID,
		UserID:    owner.UserID,
		Items:     responses,
		Totals:    s.totals(lines),
	}, nil
}

// Contents is the cart resolved against the catalog. Unavailable counts the
// stored items whose product or variant is no longer sold; they are not in
// Lines.
type Contents struct {
	Lines       []Line
	Unavailable int
}

// Contents returns the purchasable lines of the cart, priced from the catalog
func (s *Service) Contents(ctx context.Context, owner Owner) (Contents, error) {
	items, err := s.items(ctx, owner)
	if err != nil {
		return Contents{}, err
	}

	contents := Contents{Lines: make([]Line, 0, len(items))}
	for _, item := range items {
		line, _, _, err := s.resolve(ctx, item)
		if err != nil {
			if isUnavailable(err) {
				s.logger.WithFields(logrus.Fields{
					"owner":      owner.Key(),
					"product_id": item.ProductID,
				}).Warn("cart item no longer available")
				contents.Unavailable++
				continue
			}
			return Contents{}, err
		}
		contents.Lines = append(contents.Lines, line)
	}
	return contents, nil
}

// Lines returns the purchasable lines of the cart. Lines whose product or
// variant is no longer available are left out.
func (s *Service) Lines(ctx context.Context, owner Owner) ([]Line, error) {
	contents, err := s.Contents(ctx, owner)
	if err != nil {
		return nil, err
	}
	return contents.Lines, nil
}

// Totals prices the cart with the shipping rule
func (s *Service) Totals(ctx context.Context, owner Owner) (pricing.Result, error) {
	lines, err := s.Lines(ctx, owner)
	if err != nil {
		return pricing.Result{}, err
	}
	return s.rule.Evaluate(PricingLines(lines)), nil
}

// AddToCart adds an item to the cart
func (s *Service) AddToCart(ctx context.Context, owner Owner, req *AddToCartRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: must be at least 1", ErrInvalidQuantity)
	}

	prod, variant, err := s.products.Resolve(ctx, req.ProductID, req.ProductVariantID)
	if err != nil {
		return nil, err
	}

	item := Item{
		ProductID:        req.ProductID,
		ProductVariantID: req.ProductVariantID,
		Quantity:         req.Quantity,
		Price:            prod.UnitPrice(variant),
	}
	if err := s.repo(owner).Add(ctx, owner, item); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"owner":      owner.Key(),
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	}).Debug("item added to cart")

	return s.GetCart(ctx, owner)
}

// UpdateCartItem sets the quantity of a line; zero removes it
func (s *Service) UpdateCartItem(ctx context.Context, owner Owner, productID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: cannot be negative", ErrInvalidQuantity)
	}

	if err := s.repo(owner).SetQuantity(ctx, owner, productID, req.ProductVariantID, req.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, owner)
}

// RemoveFromCart removes an item from the cart
func (s *Service) RemoveFromCart(ctx context.Context, owner Owner, productID uint, variantID *uint) (*CartResponse, error) {
	return s.UpdateCartItem(ctx, owner, productID, &UpdateCartItemRequest{ProductVariantID: variantID, Quantity: 0})
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, owner Owner) error {
	return s.repo(owner).Clear(ctx, owner)
}

// GetCartItemCount returns the total quantity in the cart
func (s *Service) GetCartItemCount(ctx context.Context, owner Owner) (int, error) {
	items, err := s.items(ctx, owner)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total, nil
}

// MergeGuestCartToUser moves a guest cart into the user's cart at login
func (s *Service) MergeGuestCartToUser(ctx context.Context, userID uint, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	guest := GuestOwner(sessionID)
	items, err := s.guests.Items(ctx, guest)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	user := UserOwner(userID)
	for _, item := range items {
		if err := s.users.Add(ctx, user, item); err != nil {
			return fmt.Errorf("failed to merge cart item %d: %w", item.ProductID, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(items),
	}).Info("guest cart merged")

	return s.guests.Clear(ctx, guest)
}

func (s *Service) resolve(ctx context.Context, item Item) (Line, *product.Product, *product.ProductVariant, error) {
	prod, variant, err := s.products.Resolve(ctx, item.ProductID, item.ProductVariantID)
	if err != nil {
		return Line{}, nil, nil, err
	}

	line := Line{
		ProductID: item.ProductID,
		VariantID: item.ProductVariantID,
		Name:      prod.Name,
		Image:     prod.Image,
		UnitPrice: prod.UnitPrice(variant),
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
	if variant != nil {
		line.Variant = variant.Name
	}
	return line, prod, variant, nil
}

func (s *Service) totals(lines []Line) CartTotals {
	totals := CartTotals{ItemCount: len(lines)}
	for _, l := range lines {
		totals.TotalQuantity += l.Quantity
	}

	result := s.rule.Evaluate(PricingLines(lines))
	totals.SubTotal = result.Subtotal
	totals.ShippingCost = result.Shipping
	totals.TotalAmount = result.Total
	totals.AmountToFreeShipping = s.rule.AmountToFreeShipping(result.Subtotal)
	return totals
}

func isUnavailable(err error) bool {
	return errors.Is(err, product.ErrProductNotFound) || errors.Is(err, product.ErrVariantNotFound)
}
