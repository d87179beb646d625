package repository

import (
	"context"

	"tapzar-billing/internal/domain/model"
)

// UserRepository is a read-only view of the platform's user store.
type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
}
