// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// WishlistItem represents a saved product
type WishlistItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	ProductVariantID *uint     `gorm:"index" json:"product_variant_id"`
	CreatedAt        time.Time `json:"added_at"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// ItemResponse is a wishlist item with its product
type ItemResponse struct {
	ID               uint                    `json:"id"`
	ProductID        uint                    `json:"product_id"`
	ProductVariantID *uint                   `json:"product_variant_id,omitempty"`
	Available        bool                    `json:"available"`
	Product          *product.Product        `json:"product,omitempty"`
	ProductVariant   *product.ProductVariant `json:"product_variant,omitempty"`
	AddedAt          time.Time               `json:"added_at"`
}

// WishlistResponse is a page of the wishlist
type WishlistResponse struct {
	Items      []ItemResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// AddRequest represents add to wishlist request
type AddRequest struct {
	ProductID        uint  `json:"product_id" binding:"required"`
	ProductVariantID *uint `json:"product_variant_id"`
}

// MoveToCartRequest represents the move to cart request
type MoveToCartRequest struct {
	ProductVariantID *uint `json:"product_variant_id"`
	Quantity         int   `json:"quantity" binding:"omitempty,min=1"`
}
