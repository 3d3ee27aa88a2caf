// internal/domain/cart/repository.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrItemNotFound is returned when the cart has no line for the product and variant
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrSessionRequired is returned when a guest cart is addressed without a session id
	ErrSessionRequired = errors.New("session ID required for guest cart")
	// ErrInvalidQuantity is returned for quantities below what the operation allows
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Repository persists cart items for one kind of owner
type Repository interface {
	Items(ctx context.Context, owner Owner) ([]Item, error)
	// Add inserts the item or increases the quantity of the existing line,
	// refreshing its price.
	Add(ctx context.Context, owner Owner, item Item) error
	// SetQuantity replaces a line's quantity; zero removes the line.
	SetQuantity(ctx context.Context, owner Owner, productID uint, variantID *uint, quantity int) error
	Clear(ctx context.Context, owner Owner) error
}

// GormRepository stores authenticated users' carts in the cart_items table
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a database backed cart repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) userID(owner Owner) (uint, error) {
	if owner.UserID == nil {
		return 0, fmt.Errorf("database cart requires a user")
	}
	return *owner.UserID, nil
}

func lineScope(userID, productID uint, variantID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ? AND product_id = ?", userID, productID)
		if variantID == nil {
			return db.Where("product_variant_id IS NULL")
		}
		return db.Where("product_variant_id = ?", *variantID)
	}
}

// Items returns the user's cart lines in insertion order
func (r *GormRepository) Items(ctx context.Context, owner Owner) ([]Item, error) {
	userID, err := r.userID(owner)
	if err != nil {
		return nil, err
	}

	var rows []CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}

	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = Item{
			ProductID:        row.ProductID,
			ProductVariantID: row.ProductVariantID,
			Quantity:         row.Quantity,
			Price:            row.Price,
			AddedAt:          row.CreatedAt,
		}
	}
	return items, nil
}

// Add inserts or merges a line
func (r *GormRepository) Add(ctx context.Context, owner Owner, item Item) error {
	userID, err := r.userID(owner)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CartItem
		err := tx.Scopes(lineScope(userID, item.ProductID, item.ProductVariantID)).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&CartItem{
				UserID:           userID,
				ProductID:        item.ProductID,
				ProductVariantID: item.ProductVariantID,
				Quantity:         item.Quantity,
				Price:            item.Price,
			}).Error
		}
		if err != nil {
			return err
		}

		existing.Quantity += item.Quantity
		existing.Price = item.Price
		return tx.Save(&existing).Error
	})
}

// SetQuantity updates or removes a line
func (r *GormRepository) SetQuantity(ctx context.Context, owner Owner, productID uint, variantID *uint, quantity int) error {
	userID, err := r.userID(owner)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx).Scopes(lineScope(userID, productID, variantID))

	var result *gorm.DB
	if quantity == 0 {
		result = db.Delete(&CartItem{})
	} else {
		result = db.Model(&CartItem{}).Update("quantity", quantity)
	}
	if result.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Clear deletes every line of the user's cart
func (r *GormRepository) Clear(ctx context.Context, owner Owner) error {
	userID, err := r.userID(owner)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
