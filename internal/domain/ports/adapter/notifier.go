package adapter

import (
	"context"
	"time"

	"tapzar-billing/internal/domain/model"
)

// Receipt carries everything the notification service needs to render a
// payment confirmation.
type Receipt struct {
	PaymentID string
	Plan      model.Plan
	Amount    int64
	Currency  string
	PaidAt    time.Time
	StartsAt  *time.Time
	ExpiresAt *time.Time
}

// ReceiptNotifier delivers a best-effort receipt after a payment commits.
// Failures must never affect the already-committed payment state.
type ReceiptNotifier interface {
	SendReceipt(ctx context.Context, userID string, r Receipt) error
}
