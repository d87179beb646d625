package repository

import (
	"context"
	"time"

	"tapzar-billing/internal/domain/model"
)

// PaymentRepository is the port for payment persistence.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	// FindByGatewayID locks the row FOR UPDATE when called inside a transaction.
	FindByGatewayID(ctx context.Context, tx Tx, gatewayPaymentID string) (*model.Payment, error)
	// UpdateStatusIfPending atomically moves a pending payment to status and
	// reports whether a row actually changed. This is the idempotence guard:
	// a payment already past pending yields (false, nil).
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, failureReason *string, paidAt *time.Time) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Payment, error)
}
