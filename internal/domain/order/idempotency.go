// internal/domain/order/idempotency.go
package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingMarker = "pending"

	// DefaultPendingTTL is used when no reservation lifetime is configured
	DefaultPendingTTL = 30 * time.Second
)

// IdempotencyStore remembers which order a submission key produced. A
// reservation lives for pendingTTL so that a submission that never finishes
// frees its key; a completed key is kept for ttl.
type IdempotencyStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore creates a Redis backed idempotency store
func NewIdempotencyStore(client *redis.Client, ttl, pendingTTL time.Duration) *IdempotencyStore {
	if pendingTTL <= 0 {
		pendingTTL = DefaultPendingTTL
	}
	if pendingTTL > ttl {
		pendingTTL = ttl
	}
	return &IdempotencyStore{client: client, ttl: ttl, pendingTTL: pendingTTL}
}

func idempotencyKey(key string) string {
	return "order:idempotency:" + key
}

// Reserve claims the key for a new submission. When the key is already taken
// it returns the order id recorded for it, or 0 while that submission is
// still running.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (reserved bool, orderID uint, err error) {
	ok, err := s.client.SetNX(ctx, idempotencyKey(key), pendingMarker, s.pendingTTL).Result()
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}

	val, err := s.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Reserve(ctx, key)
	}
	if err != nil {
		return false, 0, err
	}
	if val == pendingMarker {
		return false, 0, nil
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return false, 0, err
	}
	return false, uint(id), nil
}

// Complete records the order created for the key and keeps it for the full TTL
func (s *IdempotencyStore) Complete(ctx context.Context, key string, orderID uint) error {
	return s.client.Set(ctx, idempotencyKey(key), strconv.FormatUint(uint64(orderID), 10), s.ttl).Err()
}

// Release frees the key after a failed submission so it can be retried
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKey(key)).Err()
}
