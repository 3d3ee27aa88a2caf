// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found in wishlist")
	ErrItemExists   = errors.New("item already exists in wishlist")
)

// CartAdder is the part of the cart a wishlist item moves into
type CartAdder interface {
	AddToCart(ctx context.Context, owner cart.Owner, req *cart.AddToCartRequest) (*cart.CartResponse, error)
}

// Service handles wishlist business logic
type Service struct {
	db       *gorm.DB
	products cart.ProductResolver
	carts    CartAdder
	logger   *logrus.Logger
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, products cart.ProductResolver, carts CartAdder, logger *logrus.Logger) *Service {
	return &Service{db: db, products: products, carts: carts, logger: logger}
}

func itemScope(userID, productID uint, variantID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ? AND product_id = ?", userID, productID)
		if variantID == nil {
			return db.Where("product_variant_id IS NULL")
		}
		return db.Where("product_variant_id = ?", *variantID)
	}
}

// GetWishlist returns a page of the user's wishlist, newest first
func (s *Service) GetWishlist(ctx context.Context, userID uint, page, limit int) (*WishlistResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&WishlistItem{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	var items []WishlistItem
	if err := query.Order("created_at DESC, id DESC").Offset((page - 1) * limit).Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	responses := make([]ItemResponse, len(items))
	for i, item := range items {
		resp := ItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			AddedAt:          item.CreatedAt,
		}
		prod, variant, err := s.products.Resolve(ctx, item.ProductID, item.ProductVariantID)
		switch {
		case err == nil:
			resp.Available = true
			resp.Product = prod
			resp.ProductVariant = variant
		case errors.Is(err, product.ErrProductNotFound), errors.Is(err, product.ErrVariantNotFound):
		default:
			return nil, err
		}
		responses[i] = resp
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &WishlistResponse{
		Items: responses,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// AddToWishlist saves an active product for later
func (s *Service) AddToWishlist(ctx context.Context, userID uint, req *AddRequest) (*ItemResponse, error) {
	prod, variant, err := s.products.Resolve(ctx, req.ProductID, req.ProductVariantID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&WishlistItem{}).Scopes(itemScope(userID, req.ProductID, req.ProductVariantID)).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}
	if count > 0 {
		return nil, ErrItemExists
	}

	item := WishlistItem{
		UserID:           userID,
		ProductID:        req.ProductID,
		ProductVariantID: req.ProductVariantID,
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
	}

	return &ItemResponse{
		ID:               item.ID,
		ProductID:        item.ProductID,
		ProductVariantID: item.ProductVariantID,
		Available:        true,
		Product:          prod,
		ProductVariant:   variant,
		AddedAt:          item.CreatedAt,
	}, nil
}

// RemoveFromWishlist removes an item from the wishlist
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID uint, variantID *uint) error {
	result := s.db.WithContext(ctx).Scopes(itemScope(userID, productID, variantID)).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// GetWishlistCount returns the number of items in wishlist
func (s *Service) GetWishlistCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// MoveToCart adds the item to the user's cart, then removes it from the wishlist
func (s *Service) MoveToCart(ctx context.Context, userID, productID uint, req *MoveToCartRequest) (*cart.CartResponse, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Scopes(itemScope(userID, productID, req.ProductVariantID)).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}
	if count == 0 {
		return nil, ErrItemNotFound
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	cartResp, err := s.carts.AddToCart(ctx, cart.UserOwner(userID), &cart.AddToCartRequest{
		ProductID:        productID,
		ProductVariantID: req.ProductVariantID,
		Quantity:         quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	if err := s.RemoveFromWishlist(ctx, userID, productID, req.ProductVariantID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("item moved to cart but not removed from wishlist")
	}
	return cartResp, nil
}
