package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter. It protects the webhook and initiate
// endpoints from floods; correctness of webhook processing never depends on it.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

func WebhookKey(gatewayPaymentID string) string {
	return fmt.Sprintf("rate_limit:webhook:%s", gatewayPaymentID)
}

func InitiateKey(userID string) string {
	return fmt.Sprintf("rate_limit:initiate:%s", userID)
}

// EndpointLimiter binds the fixed-window counter to the billing endpoints.
type EndpointLimiter struct {
	rl     *RateLimiter
	limit  int
	window time.Duration
}

func NewEndpointLimiter(client RedisClient, limit int, window time.Duration) *EndpointLimiter {
	return &EndpointLimiter{rl: NewRateLimiter(client), limit: limit, window: window}
}

func (l *EndpointLimiter) AllowInitiate(ctx context.Context, userID string) (bool, error) {
	return l.rl.Allow(ctx, InitiateKey(userID), l.limit, l.window)
}

func (l *EndpointLimiter) AllowWebhook(ctx context.Context, gatewayPaymentID string) (bool, error) {
	return l.rl.Allow(ctx, WebhookKey(gatewayPaymentID), l.limit, l.window)
}
