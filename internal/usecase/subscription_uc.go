// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/domain/model"
	"tapzar-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// Extend credits the user with days of subscription time. Consecutive
	// purchases stack on top of an unexpired subscription; an expired or
	// missing one restarts from now. Callers hand in the transaction of the
	// payment transition so both commit or roll back together.
	Extend(ctx context.Context, tx repository.Tx, userID string, plan model.Plan, days int) (*model.Subscription, error)
	// Current returns the user's subscription row, expired or not.
	Current(ctx context.Context, userID string) (*model.Subscription, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{subs: subs, log: logger}
}

func (u *subscriptionUC) Extend(ctx context.Context, tx repository.Tx, userID string, plan model.Plan, days int) (*model.Subscription, error) {
	if userID == "" || days <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()

	sub, err := u.subs.FindByUser(ctx, tx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		exp := now.Add(time.Duration(days) * 24 * time.Hour)
		sub = &model.Subscription{
			ID:        uuid.NewString(),
			UserID:    userID,
			Plan:      plan,
			IsActive:  true,
			AutoRenew: true,
			StartsAt:  &now,
			ExpiresAt: &exp,
			CreatedAt: now,
			UpdatedAt: now,
		}
	case err != nil:
		return nil, err
	default:
		if sub.ExpiresAt != nil && sub.ExpiresAt.After(now) {
			// Remaining time stacks regardless of the activation flag.
			exp := sub.ExpiresAt.Add(time.Duration(days) * 24 * time.Hour)
			sub.ExpiresAt = &exp
		} else {
			exp := now.Add(time.Duration(days) * 24 * time.Hour)
			sub.ExpiresAt = &exp
		}
		// The original start survives only while the run never lapsed;
		// reactivating from an inactive state counts from now.
		if !sub.IsActive || sub.StartsAt == nil || !sub.StartsAt.Before(now) {
			start := now
			sub.StartsAt = &start
		}
		sub.Plan = plan
		sub.IsActive = true
		sub.UpdatedAt = now
	}

	if err := u.subs.Save(ctx, tx, sub); err != nil {
		return nil, err
	}
	u.log.Info().
		Str("user_id", userID).
		Str("plan", string(plan)).
		Int("days", days).
		Time("expires_at", *sub.ExpiresAt).
		Msg("subscription extended")
	return sub, nil
}

func (u *subscriptionUC) Current(ctx context.Context, userID string) (*model.Subscription, error) {
	return u.subs.FindByUser(ctx, repository.NoTX, userID)
}
