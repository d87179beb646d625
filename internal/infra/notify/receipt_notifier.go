package notify

import (
	"context"

	"github.com/rs/zerolog"

	"tapzar-billing/internal/domain/ports/adapter"
	"tapzar-billing/internal/domain/ports/repository"
)

// LogNotifier is the in-process stand-in for the platform's notification
// service. It only emits a structured log line; actual email delivery belongs
// to the main platform. Receipts go out only to verified addresses, matching
// the platform's mailing policy.
type LogNotifier struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

var _ adapter.ReceiptNotifier = (*LogNotifier)(nil)

func NewLogNotifier(users repository.UserRepository, logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{users: users, log: logger}
}

func (n *LogNotifier) SendReceipt(ctx context.Context, userID string, r adapter.Receipt) error {
	u, err := n.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	if !u.EmailVerified {
		n.log.Debug().Str("user_id", userID).Msg("skipping receipt, email not verified")
		return nil
	}
	n.log.Info().
		Str("user_id", userID).
		Str("email", u.Email).
		Str("payment_id", r.PaymentID).
		Str("plan", string(r.Plan)).
		Int64("amount", r.Amount).
		Str("currency", r.Currency).
		Time("paid_at", r.PaidAt).
		Msg("payment receipt queued")
	return nil
}

// NoopNotifier drops receipts. Used in tests and seed tooling.
type NoopNotifier struct{}

var _ adapter.ReceiptNotifier = (*NoopNotifier)(nil)

func (NoopNotifier) SendReceipt(context.Context, string, adapter.Receipt) error { return nil }
