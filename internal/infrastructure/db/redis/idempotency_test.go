package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestIdempotencyStore_KeyLayout(t *testing.T) {
	s := NewIdempotencyStore(nil)
	if got := s.key(42, "abc-123"); got != "idem:client:42:abc-123" {
		t.Fatalf("unexpected key: %s", got)
	}
	if s.key(1, "k") == s.key(2, "k") {
		t.Fatalf("keys must be scoped per user")
	}
}

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestIdempotencyStore_WrapsErrors(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	s := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := s.Lookup(ctx, 1, "k"); err == nil || !strings.Contains(err.Error(), "idempotency lookup") {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if err := s.Remember(ctx, 1, "k", 9, time.Minute); err == nil || !strings.Contains(err.Error(), "idempotency remember") {
		t.Fatalf("expected wrapped remember error, got %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Fatalf("expected ping to fail")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil || !strings.HasPrefix(err.Error(), "redis ping") {
		t.Fatalf("expected redis ping error, got %v", err)
	}
}
