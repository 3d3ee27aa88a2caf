// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrInvalidItem             = errors.New("order item must have a positive quantity and a non-negative price")
	ErrTotalMismatch           = errors.New("order total does not match its items")
	ErrNotPending              = errors.New("new orders must have status pending")
	ErrCannotCancel            = errors.New("order can no longer be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrSubmissionInFlight      = errors.New("an order with this idempotency key is still being created")
)

// EventPublisher announces committed orders to other systems
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event CreatedEvent) error
}

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	idempotency *IdempotencyStore
	publisher   EventPublisher
	rule        pricing.Rule
	currency    string
	logger      *logrus.Logger
}

// NewService creates a new order service. idempotency may be nil, in which
// case only the database unique index deduplicates submissions.
func NewService(db *gorm.DB, idempotency *IdempotencyStore, publisher EventPublisher, rule pricing.Rule, currency string, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		idempotency: idempotency,
		publisher:   publisher,
		rule:        rule,
		currency:    currency,
		logger:      logger,
	}
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
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

// CreateOrder persists an order from a checkout payload. A repeated
// idempotency key returns the order created by the first submission.
func (s *Service) CreateOrder(ctx context.Context, userID uint, payload *Payload, idempotencyKey string) (*Order, error) {
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "idempotency_key": idempotencyKey})

	if idempotencyKey != "" {
		if existing, err := s.findByIdempotencyKey(ctx, userID, idempotencyKey); err == nil {
			log.WithField("order_id", existing.ID).Info("returning order for repeated submission")
			return existing, nil
		}

		if s.idempotency != nil {
			reserved, orderID, err := s.idempotency.Reserve(ctx, idempotencyKey)
			switch {
			case err != nil:
				log.WithError(err).Warn("idempotency store unavailable, relying on database")
			case !reserved && orderID != 0:
				return s.GetOrder(ctx, userID, orderID)
			case !reserved:
				return nil, ErrSubmissionInFlight
			}
		}
	}

	order, err := s.create(ctx, userID, payload, idempotencyKey)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && idempotencyKey != "" {
			if existing, findErr := s.findByIdempotencyKey(ctx, userID, idempotencyKey); findErr == nil {
				return existing, nil
			}
		}
		if idempotencyKey != "" && s.idempotency != nil {
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), idempotencyKey); relErr != nil {
				log.WithError(relErr).Warn("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Complete(context.WithoutCancel(ctx), idempotencyKey, order.ID); err != nil {
			log.WithError(err).Warn("failed to record idempotency key")
		}
	}

	log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount,
	}).Info("order created")

	s.publishCreated(ctx, order)
	return order, nil
}

func (s *Service) create(ctx context.Context, userID uint, payload *Payload, idempotencyKey string) (*Order, error) {
	order := Order{
		OrderNumber:     generateOrderNumber(time.Now().UTC()),
		UserID:          userID,
		Email:           strings.ToLower(strings.TrimSpace(payload.ShippingAddress.Email)),
		Status:          OrderStatusPending,
		PaymentMethod:   payload.PaymentMethod,
		SubtotalAmount:  payload.Subtotal,
		ShippingAmount:  payload.Shipping,
		TotalAmount:     payload.Total,
		Currency:        s.currency,
		ShippingAddress: payload.ShippingAddress,
	}
	if idempotencyKey != "" {
		order.IdempotencyKey = &idempotencyKey
	}
	for _, item := range payload.Items {
		order.Items = append(order.Items, OrderItem{
			ProductID:        item.ProductID,
			ProductVariantID: item.VariantID,
			Name:             item.Name,
			VariantTitle:     item.Variant,
			Image:            item.Image,
			Quantity:         item.Quantity,
			Price:            item.Price,
			TotalPrice:       item.Price * int64(item.Quantity),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   order.ID,
			Status:    OrderStatusPending,
			Comment:   "Order created",
			CreatedBy: userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		order.StatusHistory = []OrderStatusHistory{history}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) validatePayload(payload *Payload) error {
	if payload == nil || len(payload.Items) == 0 {
		return ErrEmptyOrder
	}
	if payload.Status != "" && payload.Status != OrderStatusPending {
		return ErrNotPending
	}

	lines := make([]pricing.Line, len(payload.Items))
	for i, item := range payload.Items {
		if item.Quantity < 1 || item.Price < 0 {
			return fmt.Errorf("%w: product %d", ErrInvalidItem, item.ProductID)
		}
		lines[i] = pricing.Line{UnitPrice: item.Price, Quantity: item.Quantity}
	}

	expected := s.rule.Evaluate(lines)
	if expected.Subtotal != payload.Subtotal || expected.Shipping != payload.Shipping || expected.Total != payload.Total {
		return fmt.Errorf("%w: expected %d, got %d", ErrTotalMismatch, expected.Total, payload.Total)
	}
	return nil
}

func (s *Service) publishCreated(ctx context.Context, order *Order) {
	if s.publisher == nil {
		return
	}

	event := CreatedEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Email:         order.Email,
		TotalAmount:   order.TotalAmount,
		TotalDisplay:  money.FormatWithCurrency(order.TotalAmount, order.Currency),
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
		CreatedAt:     order.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to publish order created event")
	}
}

func (s *Service) findByIdempotencyKey(ctx context.Context, userID uint, key string) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUserOrders returns a page of the user's orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, userID uint, page, limit int) (*OrderResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderResponse{
		Orders: orders,
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

// GetOrder retrieves one of the user's orders
func (s *Service) GetOrder(ctx context.Context, userID, id uint) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels one of the user's orders while it is still pending
func (s *Service) CancelOrder(ctx context.Context, userID, id uint, reason string) (*Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.CanBeCancelled() {
			return fmt.Errorf("%w: status is %s", ErrCannotCancel, order.Status)
		}
		return s.transition(tx, &order, OrderStatusCancelled, "Order cancelled: "+reason, userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "order_id": id}).Info("order cancelled")
	return s.GetOrder(ctx, userID, id)
}

// UpdateOrderStatus moves an order along its fulfilment lifecycle
func (s *Service) UpdateOrderStatus(ctx context.Context, id uint, status OrderStatus, comment string, updatedBy uint) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !isValidStatusTransition(order.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, status)
		}
		return s.transition(tx, &order, status, comment, updatedBy)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) transition(tx *gorm.DB, order *Order, status OrderStatus, comment string, by uint) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{"status": status}
	if status == OrderStatusCancelled {
		updates["cancelled_at"] = now
	}
	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status

	return tx.Create(&OrderStatusHistory{
		OrderID:   order.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: by,
		CreatedAt: now,
	}).Error
}

func isValidStatusTransition(from, to OrderStatus) bool {
	validTransitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped},
		OrderStatusShipped:    {OrderStatusDelivered},
	}

	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// generateOrderNumber formats ORD-YYYYMMDD-XXXXXXXX
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
