package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// hashStore is the slice of the redis client the cart needs.
type hashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key, field string, value any, ttl time.Duration) error
	HIncrBy(ctx context.Context, key, field string, delta int64, ttl time.Duration) (int64, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
	CartKey(ownerID string) string
}

// Store keeps carts as redis hashes, one per operator, refreshed to ttl on
// every write.
type Store struct {
	redis hashStore
	ttl   time.Duration
}

func NewStore(redis hashStore, ttl time.Duration) (*Store, error) {
	if redis == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Store{redis: redis, ttl: ttl}, nil
}

func (s *Store) Load(ctx context.Context, owner uuid.UUID) (*Cart, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(owner))
	if err != nil {
		return nil, err
	}
	return FromFields(owner, fields), nil
}

// Increment adds one unit of productID and returns the new quantity.
func (s *Store) Increment(ctx context.Context, owner, productID uuid.UUID) (int, error) {
	qty, err := s.redis.HIncrBy(ctx, s.key(owner), productID.String(), 1, s.ttl)
	return int(qty), err
}

// Set writes qty for productID, deleting the field when qty <= 0.
func (s *Store) Set(ctx context.Context, owner, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return s.redis.HDel(ctx, s.key(owner), productID.String())
	}
	return s.redis.HSet(ctx, s.key(owner), productID.String(), qty, s.ttl)
}

// Deduct takes the quantities in sold off the stored cart. Lines that reach
// zero are dropped; units added after sold was loaded stay in the cart.
func (s *Store) Deduct(ctx context.Context, owner uuid.UUID, sold *Cart) error {
	key := s.key(owner)
	for id, qty := range sold.Entries() {
		left, err := s.redis.HIncrBy(ctx, key, id.String(), -int64(qty), s.ttl)
		if err != nil {
			return err
		}
		if left <= 0 {
			if err := s.redis.HDel(ctx, key, id.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, owner uuid.UUID) error {
	return s.redis.Del(ctx, s.key(owner))
}

func (s *Store) key(owner uuid.UUID) string {
	return s.redis.CartKey(owner.String())
}
