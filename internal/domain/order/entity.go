// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order represents the order entity
type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	OrderNumber    string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID         uint        `gorm:"not null;index" json:"user_id"`
	Email          string      `gorm:"not null;size:255" json:"email"`
	Status         OrderStatus `gorm:"not null;default:'pending'" json:"status"`
	PaymentMethod  string      `gorm:"not null;size:20" json:"payment_method"`
	IdempotencyKey *string     `gorm:"uniqueIndex;size:64" json:"-"`

	// Financial Information, in cents
	SubtotalAmount int64  `gorm:"not null" json:"subtotal_amount"`
	ShippingAmount int64  `gorm:"default:0" json:"shipping_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	Currency       string `gorm:"size:3;default:'USD'" json:"currency"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents items in an order
type OrderItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          uint      `gorm:"not null;index" json:"order_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	ProductVariantID *uint     `gorm:"index" json:"product_variant_id"`
	Name             string    `gorm:"not null;size:255" json:"name"`
	VariantTitle     string    `gorm:"size:255" json:"variant_title"`
	Image            string    `gorm:"size:500" json:"image"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	Price            int64     `gorm:"not null" json:"price"`       // Price per unit in cents
	TotalPrice       int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt        time.Time `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// Address is the shipping address captured with the order
type Address struct {
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	Email        string `gorm:"size:255" json:"email"`
	Phone        string `gorm:"size:20" json:"phone"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:100" json:"country"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

// Payload is the order submitted by checkout. Items, amounts and address are
// fixed at submission time.
type Payload struct {
	Subtotal        int64         `json:"subtotal"`
	Shipping        int64         `json:"shipping"`
	Total           int64         `json:"total"`
	Status          OrderStatus   `json:"status"`
	PaymentMethod   string        `json:"payment_method"`
	ShippingAddress Address       `json:"shipping_address"`
	Items           []PayloadItem `json:"items"`
}

// PayloadItem is one purchased line
type PayloadItem struct {
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"product_variant_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Variant   string `json:"variant,omitempty"`
	Image     string `json:"image,omitempty"`
}

// CreatedEvent is published once an order is committed
type CreatedEvent struct {
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        uint      `json:"user_id"`
	Email         string    `json:"email"`
	TotalAmount   int64     `json:"total_amount"`
	TotalDisplay  string    `json:"total_display"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}
