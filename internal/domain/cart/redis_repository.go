// internal/domain/cart/redis_repository.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores guest carts as JSON documents with a sliding TTL
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository creates a Redis backed cart repository
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (r *RedisRepository) load(ctx context.Context, owner Owner) (*SessionCart, error) {
	if owner.SessionID == "" {
		return nil, ErrSessionRequired
	}

	data, err := r.client.Get(ctx, sessionKey(owner.SessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		now := time.Now().UTC()
		return &SessionCart{SessionID: owner.SessionID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}

	var cart SessionCart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return &cart, nil
}

func (r *RedisRepository) save(ctx context.Context, cart *SessionCart) error {
	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(cart.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

// Items returns the guest cart lines
func (r *RedisRepository) Items(ctx context.Context, owner Owner) ([]Item, error) {
	cart, err := r.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Add inserts or merges a line
func (r *RedisRepository) Add(ctx context.Context, owner Owner, item Item) error {
	cart, err := r.load(ctx, owner)
	if err != nil {
		return err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].Matches(item.ProductID, item.ProductVariantID) {
			cart.Items[i].Quantity += item.Quantity
			cart.Items[i].Price = item.Price
			merged = true
			break
		}
	}
	if !merged {
		if item.AddedAt.IsZero() {
			item.AddedAt = time.Now().UTC()
		}
		cart.Items = append(cart.Items, item)
	}

	return r.save(ctx, cart)
}

// SetQuantity updates or removes a line
func (r *RedisRepository) SetQuantity(ctx context.Context, owner Owner, productID uint, variantID *uint, quantity int) error {
	cart, err := r.load(ctx, owner)
	if err != nil {
		return err
	}

	for i := range cart.Items {
		if !cart.Items[i].Matches(productID, variantID) {
			continue
		}
		if quantity == 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = quantity
		}
		return r.save(ctx, cart)
	}

	return ErrItemNotFound
}

// Clear deletes the guest cart
func (r *RedisRepository) Clear(ctx context.Context, owner Owner) error {
	if owner.SessionID == "" {
		return ErrSessionRequired
	}
	if err := r.client.Del(ctx, sessionKey(owner.SessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}
