// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartItem represents a cart item stored in database for authenticated users
type CartItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	ProductVariantID *uint     `gorm:"index" json:"product_variant_id"`
	Quantity         int       `gorm:"not null;default:1" json:"quantity"`
	Price            int64     `gorm:"not null" json:"price"` // Price at time of adding
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart represents a cart session for guest users (stored in Redis)
type SessionCart struct {
	SessionID string    `json:"session_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a stored cart line, independent of where it is persisted
type Item struct {
	ProductID        uint      `json:"product_id"`
	ProductVariantID *uint     `json:"product_variant_id,omitempty"`
	Quantity         int       `json:"quantity"`
	Price            int64     `json:"price"`
	AddedAt          time.Time `json:"added_at"`
}

// Matches reports whether the item is the line for the product and variant
func (i Item) Matches(productID uint, variantID *uint) bool {
	return i.ProductID == productID && sameVariant(i.ProductVariantID, variantID)
}

func sameVariant(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Owner identifies whose cart is addressed: an authenticated user, or a guest
// session when UserID is nil.
type Owner struct {
	UserID    *uint
	SessionID string
}

// UserOwner returns the owner for an authenticated user
func UserOwner(userID uint) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner returns the owner for a guest session
func GuestOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// IsGuest reports whether the cart belongs to a guest session
func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// Key is a stable string identifying the owner
func (o Owner) Key() string {
	if o.UserID != nil {
		return fmt.Sprintf("user:%d", *o.UserID)
	}
	return "session:" + o.SessionID
}

// Line is a cart item resolved against the catalog. UnitPrice is the price
// currently charged for the product or variant.
type Line struct {
	ProductID uint      `json:"product_id"`
	VariantID *uint     `json:"product_variant_id,omitempty"`
	Variant   string    `json:"variant,omitempty"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"-"`
}

// PricingLine returns the amounts the shipping rule needs
func (l Line) PricingLine() pricing.Line {
	return pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
}

// PricingLines converts resolved lines for pricing.Rule.Evaluate
func PricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = l.PricingLine()
	}
	return out
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount            int   `json:"item_count"`     // Number of unique items
	TotalQuantity        int   `json:"total_quantity"` // Sum of all quantities
	SubTotal             int64 `json:"sub_total"`
	ShippingCost         int64 `json:"shipping_cost"`
	TotalAmount          int64 `json:"total_amount"`
	AmountToFreeShipping int64 `json:"amount_to_free_shipping"`
}

// CartItemResponse represents a cart item with product details
type CartItemResponse struct {
	ProductID        uint                    `json:"product_id"`
	ProductVariantID *uint                   `json:"product_variant_id,omitempty"`
	Quantity         int                     `json:"quantity"`
	Price            int64                   `json:"price"`
	Available        bool                    `json:"available"`
	Product          *product.Product        `json:"product,omitempty"`
	ProductVariant   *product.ProductVariant `json:"product_variant,omitempty"`
	AddedAt          time.Time               `json:"added_at"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	SessionID string             `json:"session_id,omitempty"`
	UserID    *uint              `json:"user_id,omitempty"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID        uint  `json:"product_id" binding:"required"`
	ProductVariantID *uint `json:"product_variant_id"`
	Quantity         int   `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	ProductVariantID *uint `json:"product_variant_id"`
	Quantity         int   `json:"quantity" binding:"min=0"`
}
