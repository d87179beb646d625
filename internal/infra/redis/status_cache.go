package redis

import (
	"context"
	"fmt"
	"time"

	"tapzar-billing/internal/domain/model"
)

// StatusCache keeps terminal payment statuses so polling clients stop hitting
// Postgres. Pending payments are never cached; their status can still change.
type StatusCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewStatusCache(client RedisClient, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func statusKey(gatewayPaymentID string) string {
	return fmt.Sprintf("payment_status:%s", gatewayPaymentID)
}

func (c *StatusCache) Get(ctx context.Context, gatewayPaymentID string) (model.PaymentStatus, bool) {
	v, err := c.client.Get(ctx, statusKey(gatewayPaymentID))
	if err != nil {
		return "", false
	}
	return model.PaymentStatus(v), true
}

func (c *StatusCache) Put(ctx context.Context, gatewayPaymentID string, status model.PaymentStatus) {
	if !status.Terminal() {
		return
	}
	_ = c.client.Set(ctx, statusKey(gatewayPaymentID), string(status), c.ttl)
}
