// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/domain/model"
	"tapzar-billing/internal/domain/ports/adapter"
	"tapzar-billing/internal/domain/ports/repository"
	"tapzar-billing/internal/infra/metrics"
	"tapzar-billing/internal/infra/payment"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// WebhookOutcome classifies what a verified callback did.
type WebhookOutcome string

const (
	WebhookApplied          WebhookOutcome = "applied"
	WebhookAlreadyProcessed WebhookOutcome = "already_processed"
	WebhookIgnored          WebhookOutcome = "ignored"
)

// WebhookResult is what a verified callback produced.
type WebhookResult struct {
	Outcome WebhookOutcome
	Payment *model.Payment
}

type WebhookUseCase interface {
	// Process authenticates and applies one gateway result callback.
	// Verification or lookup failures surface as ErrSignatureInvalid or
	// ErrUnknownPayment; duplicates succeed without re-applying.
	Process(ctx context.Context, fields map[string]string) (*WebhookResult, error)
	// Simulate drives the same ledger transition without a signed callback.
	// Refused outside the sandbox environment.
	Simulate(ctx context.Context, gatewayPaymentID string, success bool) (*WebhookResult, error)
}

// WebhookConfig carries the protocol knobs the processor needs.
type WebhookConfig struct {
	Secret        string
	DefaultScript string // signed script name when pg_script is absent
	Sandbox       bool
}

type webhookUC struct {
	cfg      WebhookConfig
	payments PaymentUseCase
	subs     SubscriptionUseCase
	tm       repository.TransactionManager
	notifier adapter.ReceiptNotifier
	log      *zerolog.Logger
}

func NewWebhookUseCase(cfg WebhookConfig, payments PaymentUseCase, subs SubscriptionUseCase, tm repository.TransactionManager, notifier adapter.ReceiptNotifier, logger *zerolog.Logger) *webhookUC {
	if cfg.DefaultScript == "" {
		cfg.DefaultScript = "result.php"
	}
	return &webhookUC{cfg: cfg, payments: payments, subs: subs, tm: tm, notifier: notifier, log: logger}
}

func (u *webhookUC) Process(ctx context.Context, fields map[string]string) (*WebhookResult, error) {
	sig := fields[payment.SigField]
	if sig == "" {
		metrics.IncWebhookEvent("rejected")
		return nil, domain.ErrSignatureInvalid
	}
	script := fields["pg_script"]
	if script == "" {
		script = u.cfg.DefaultScript
	}
	if !payment.Verify(script, fields, u.cfg.Secret, sig) {
		metrics.IncWebhookEvent("rejected")
		return nil, domain.ErrSignatureInvalid
	}

	gatewayID := fields["pg_payment_id"]
	pay, err := u.payments.ByGatewayID(ctx, gatewayID)
	if err != nil {
		metrics.IncWebhookEvent("rejected")
		return nil, err
	}

	result := fields["pg_result"]
	if result == "" {
		result = fields["pg_status"]
	}
	var outcome ResultOutcome
	switch strings.ToLower(result) {
	case "1", "ok", "success":
		outcome = OutcomePaid
	case "0", "failed", "error":
		outcome = OutcomeFailed
	default:
		// Authenticated but uninterpretable verdict: acknowledge, change nothing.
		metrics.IncWebhookEvent(string(WebhookIgnored))
		return &WebhookResult{Outcome: WebhookIgnored, Payment: pay}, nil
	}

	var reason *string
	if outcome == OutcomeFailed {
		if d := fields["pg_failure_description"]; d != "" {
			reason = &d
		} else {
			generic := "gateway reported failure"
			reason = &generic
		}
	}
	return u.apply(ctx, gatewayID, outcome, reason)
}

func (u *webhookUC) Simulate(ctx context.Context, gatewayPaymentID string, success bool) (*WebhookResult, error) {
	if !u.cfg.Sandbox {
		return nil, domain.ErrSimulationDisabled
	}
	outcome := OutcomePaid
	var reason *string
	if !success {
		outcome = OutcomeFailed
		simulated := "simulated failure"
		reason = &simulated
	}
	return u.apply(ctx, gatewayPaymentID, outcome, reason)
}

// apply runs the payment transition and the subscription extension in one
// transaction, then fires the receipt outside of it.
func (u *webhookUC) apply(ctx context.Context, gatewayPaymentID string, outcome ResultOutcome, failureReason *string) (*WebhookResult, error) {
	var (
		pay     *model.Payment
		sub     *model.Subscription
		applied bool
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		pay, applied, err = u.payments.ApplyResult(ctx, tx, gatewayPaymentID, outcome, failureReason)
		if err != nil {
			return err
		}
		if applied && pay.Status == model.PaymentStatusPaid {
			sub, err = u.subs.Extend(ctx, tx, pay.UserID, pay.Plan, model.PlanDurationDays)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if err == domain.ErrUnknownPayment {
			metrics.IncWebhookEvent("rejected")
		}
		return nil, err
	}

	if !applied {
		metrics.IncWebhookEvent(string(WebhookAlreadyProcessed))
		return &WebhookResult{Outcome: WebhookAlreadyProcessed, Payment: pay}, nil
	}
	metrics.IncWebhookEvent(string(WebhookApplied))

	if pay.Status == model.PaymentStatusPaid {
		// Post-commit, best effort. A failed receipt never touches the ledger.
		receipt := adapter.Receipt{
			PaymentID: derefOr(pay.GatewayPaymentID, pay.ID),
			Plan:      pay.Plan,
			Amount:    pay.Amount,
			Currency:  pay.Currency,
			PaidAt:    *pay.PaidAt,
		}
		if sub != nil {
			receipt.StartsAt = sub.StartsAt
			receipt.ExpiresAt = sub.ExpiresAt
		}
		if err := u.notifier.SendReceipt(ctx, pay.UserID, receipt); err != nil {
			u.log.Warn().Err(err).Str("payment_id", pay.ID).Msg("receipt delivery failed")
		}
	}
	return &WebhookResult{Outcome: WebhookApplied, Payment: pay}, nil
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
