package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idem:client"

// IdempotencyStore maps (user, Idempotency-Key) to the client created by the
// first request carrying it.
// Key format: idem:client:<user_id>:<key>
type IdempotencyStore struct {
	client redis.Cmdable
}

func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Lookup returns the remembered client id, or found=false on a miss.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID int64, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, s.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q: %w", val, err)
	}
	return id, true, nil
}

// Remember stores clientID under the key. An existing entry is kept: the
// first create wins.
func (s *IdempotencyStore) Remember(ctx context.Context, userID int64, key string, clientID int64, ttl time.Duration) error {
	if err := s.client.SetNX(ctx, s.key(userID, key), clientID, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Ping lets the store double as a health probe.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) key(userID int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, userID, key)
}
