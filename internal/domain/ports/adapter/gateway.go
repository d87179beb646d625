package adapter

import "context"

// InitResult is what a successful payment initiation yields.
type InitResult struct {
	GatewayPaymentID string
	RedirectURL      string
}

// PaymentGateway initiates a charge with the external provider. Implementations
// must bound the outbound call with a timeout and never retry on their own; the
// caller generates a fresh order id per attempt.
type PaymentGateway interface {
	Name() string
	Initiate(ctx context.Context, orderID string, amount int64, description, clientIP string) (*InitResult, error)
}
