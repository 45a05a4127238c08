package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore keeps one replay record per caller scope and key.
type IdempotencyStore interface {
	LoadRecord(ctx context.Context, key string) (string, bool, error)
	SaveRecord(ctx context.Context, key, record string, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// IdempotencyKey namespaces a client supplied Idempotency-Key under scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return key("idempotency", scope, id)
}

// LoadRecord reports found=false for a missing key rather than an error.
func (c *Client) LoadRecord(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.cmd == nil {
		return "", false, errNotInitialized
	}
	record, err := c.cmd.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return record, true, nil
}

// SaveRecord stores record unless another request already claimed key.
func (c *Client) SaveRecord(ctx context.Context, key, record string, ttl time.Duration) (bool, error) {
	if c == nil || c.cmd == nil {
		return false, errNotInitialized
	}
	return c.cmd.SetNX(ctx, key, record, ttl).Result()
}
