package model

import "time"

// Subscription is a user's single entitlement record. There is at most one row
// per user; successful payments extend it rather than creating siblings. Rows
// are kept after expiry for billing history.
type Subscription struct {
	ID        string // UUID
	UserID    string // UUID, unique
	Plan      Plan
	IsActive  bool
	AutoRenew bool
	StartsAt  *time.Time
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveAt reports whether the subscription grants access at the given instant.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s != nil && s.IsActive && s.ExpiresAt != nil && s.ExpiresAt.After(t)
}
