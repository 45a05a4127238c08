package redis

import (
	"context"
	"strconv"
	"time"
)

// WindowDecision is the outcome of counting one request against a window.
type WindowDecision struct {
	Allowed   bool
	Count     int64
	Remaining int64
	ResetIn   time.Duration
}

// RateLimiter counts requests per scope in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, scope string, limit int64, window time.Duration) (WindowDecision, error)
}

// Allow increments the counter for the window containing now. Windows are
// aligned to the epoch so every replica shares the same bucket key.
func (c *Client) Allow(ctx context.Context, scope string, limit int64, window time.Duration) (WindowDecision, error) {
	if c == nil || c.cmd == nil {
		return WindowDecision{}, errNotInitialized
	}
	if window <= 0 {
		return WindowDecision{Allowed: true}, nil
	}

	now := c.now()
	bucket := now.UnixNano() / int64(window)
	resetAt := time.Unix(0, (bucket+1)*int64(window))
	k := key("rate_limit", scope, strconv.FormatInt(bucket, 10))

	count, err := c.cmd.Incr(ctx, k).Result()
	if err != nil {
		return WindowDecision{}, err
	}
	if count == 1 {
		if err := c.cmd.Expire(ctx, k, window).Err(); err != nil {
			return WindowDecision{}, err
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return WindowDecision{
		Allowed:   count <= limit,
		Count:     count,
		Remaining: remaining,
		ResetIn:   resetAt.Sub(now),
	}, nil
}
