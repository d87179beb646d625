package repository

import (
	"context"

	"tapzar-billing/internal/domain/model"
)

// SubscriptionRepository is the port for the one-per-user entitlement rows.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	// FindByUser locks the row FOR UPDATE when called inside a transaction;
	// returns domain.ErrNotFound when the user has never paid.
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
}
