// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/domain/model"
	"tapzar-billing/internal/domain/ports/adapter"
	"tapzar-billing/internal/domain/ports/repository"
	"tapzar-billing/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// ResultOutcome is the interpreted gateway verdict for a payment.
type ResultOutcome string

const (
	OutcomePaid   ResultOutcome = "paid"
	OutcomeFailed ResultOutcome = "failed"
)

// StatusCache holds terminal payment statuses keyed by gateway payment id.
type StatusCache interface {
	Get(ctx context.Context, gatewayPaymentID string) (model.PaymentStatus, bool)
	Put(ctx context.Context, gatewayPaymentID string, status model.PaymentStatus)
}

type PaymentUseCase interface {
	// Initiate requests a payment with the gateway and records it as pending.
	// Returns the created payment and the redirect URL for the end user.
	Initiate(ctx context.Context, userID string, plan model.Plan, clientIP string) (*model.Payment, string, error)
	// ApplyResult drives the pending payment to its verdict. The second return
	// reports whether a transition actually happened; false with a nil error is
	// the idempotent already-processed path.
	ApplyResult(ctx context.Context, tx repository.Tx, gatewayPaymentID string, outcome ResultOutcome, failureReason *string) (*model.Payment, bool, error)
	// ByGatewayID resolves a payment by its external id, without ownership
	// scoping; used by the webhook path where the caller is the gateway.
	ByGatewayID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error)
	// Status returns the payment status for the owning user.
	Status(ctx context.Context, userID, gatewayPaymentID string) (model.PaymentStatus, error)
	// History lists the user's recent payments, newest first.
	History(ctx context.Context, userID string, limit int) ([]*model.Payment, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	gateway  adapter.PaymentGateway
	cache    StatusCache
	currency string
	log      *zerolog.Logger
}

func NewPaymentUseCase(payments repository.PaymentRepository, gateway adapter.PaymentGateway, cache StatusCache, currency string, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{payments: payments, gateway: gateway, cache: cache, currency: currency, log: logger}
}

func (u *paymentUC) Initiate(ctx context.Context, userID string, plan model.Plan, clientIP string) (*model.Payment, string, error) {
	if userID == "" {
		return nil, "", domain.ErrInvalidArgument
	}
	amount := model.PriceOf(plan)
	// Fresh order id per attempt; retried initiations never collide on the
	// gateway side.
	orderID := fmt.Sprintf("%s-%s-%s", userID, plan, ulid.Make().String())

	start := time.Now()
	res, err := u.gateway.Initiate(ctx, orderID, amount, fmt.Sprintf("Plan %s", plan), clientIP)
	if err != nil {
		metrics.ObserveGatewayInit("error", time.Since(start).Seconds())
		return nil, "", err
	}
	metrics.ObserveGatewayInit("ok", time.Since(start).Seconds())

	// The row is written only once the gateway id is known, so a payment can
	// never exist without a resolvable external id.
	now := time.Now()
	p := &model.Payment{
		ID:               uuid.NewString(),
		UserID:           userID,
		Plan:             plan,
		Amount:           amount,
		Currency:         u.currency,
		GatewayPaymentID: &res.GatewayPaymentID,
		Status:           model.PaymentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, "", err
	}
	metrics.IncPayment(string(model.PaymentStatusPending))
	u.log.Info().
		Str("payment_id", p.ID).
		Str("gateway_payment_id", res.GatewayPaymentID).
		Str("plan", string(plan)).
		Int64("amount", amount).
		Msg("payment initiated")
	return p, res.RedirectURL, nil
}

func (u *paymentUC) ApplyResult(ctx context.Context, tx repository.Tx, gatewayPaymentID string, outcome ResultOutcome, failureReason *string) (*model.Payment, bool, error) {
	p, err := u.payments.FindByGatewayID(ctx, tx, gatewayPaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrUnknownPayment
		}
		return nil, false, err
	}
	if p.Status != model.PaymentStatusPending {
		// Duplicate delivery; success without a fresh transition.
		return p, false, nil
	}

	target := model.PaymentStatusPaid
	var paidAt *time.Time
	if outcome == OutcomeFailed {
		target = model.PaymentStatusFailed
	} else {
		now := time.Now()
		paidAt = &now
	}
	if !model.CanTransition(p.Status, target) {
		return nil, false, domain.ErrInvalidTransition
	}

	changed, err := u.payments.UpdateStatusIfPending(ctx, tx, p.ID, target, failureReason, paidAt)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		// Lost the race to a concurrent delivery after our read.
		return p, false, nil
	}

	p.Status = target
	p.FailureReason = failureReason
	p.PaidAt = paidAt
	p.UpdatedAt = time.Now()
	metrics.IncPayment(string(target))
	if target == model.PaymentStatusPaid {
		metrics.AddPaymentRevenue(p.Currency, p.Amount)
	}
	return p, true, nil
}

func (u *paymentUC) ByGatewayID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error) {
	if gatewayPaymentID == "" {
		return nil, domain.ErrUnknownPayment
	}
	p, err := u.payments.FindByGatewayID(ctx, repository.NoTX, gatewayPaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownPayment
		}
		return nil, err
	}
	return p, nil
}

func (u *paymentUC) Status(ctx context.Context, userID, gatewayPaymentID string) (model.PaymentStatus, error) {
	if gatewayPaymentID == "" {
		return "", domain.ErrInvalidArgument
	}
	if u.cache != nil {
		if status, ok := u.cache.Get(ctx, gatewayPaymentID); ok {
			// Ownership still has to hold even on a cache hit.
			if p, err := u.payments.FindByGatewayID(ctx, repository.NoTX, gatewayPaymentID); err != nil || p.UserID != userID {
				return "", domain.ErrNotFound
			}
			return status, nil
		}
	}
	p, err := u.payments.FindByGatewayID(ctx, repository.NoTX, gatewayPaymentID)
	if err != nil {
		return "", err
	}
	if p.UserID != userID {
		return "", domain.ErrNotFound
	}
	if u.cache != nil {
		u.cache.Put(ctx, gatewayPaymentID, p.Status)
	}
	return p.Status, nil
}

func (u *paymentUC) History(ctx context.Context, userID string, limit int) ([]*model.Payment, error) {
	return u.payments.ListByUser(ctx, repository.NoTX, userID, limit)
}
