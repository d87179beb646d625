package payment

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"tapzar-billing/internal/domain/ports/adapter"
)

// NoopGateway accepts every initiation without touching the network.
// Used by cmd/seed and local development wiring.
type NoopGateway struct{}

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

func (NoopGateway) Name() string { return "noop" }

func (NoopGateway) Initiate(_ context.Context, orderID string, _ int64, _, _ string) (*adapter.InitResult, error) {
	id := ulid.Make().String()
	return &adapter.InitResult{
		GatewayPaymentID: id,
		RedirectURL:      fmt.Sprintf("https://example.invalid/pay/%s?order=%s", id, orderID),
	}, nil
}
