package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // init accepted by gateway; awaiting result callback
	PaymentStatusPaid      PaymentStatus = "paid"      // gateway reported success
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway reported failure
	PaymentStatusCancelled PaymentStatus = "cancelled" // cancelled before a result arrived
	PaymentStatusRefunded  PaymentStatus = "refunded"  // refunded after success (status marking only)
)

// Payment records one charge attempt against the gateway.
type Payment struct {
	ID               string // UUID
	UserID           string // UUID of the purchasing user
	Plan             Plan
	Amount           int64 // whole currency units, matches the plan price table
	Currency         string
	GatewayPaymentID *string // assigned by the gateway on init; unique once set
	Status           PaymentStatus
	FailureReason    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaidAt           *time.Time
}

// transitions is the full forward-only state machine. Terminal states have no
// outgoing edges and can never be reopened.
var transitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no result callback can change the status anymore.
// Paid payments still accept the refunded marking but are terminal for webhooks.
func (s PaymentStatus) Terminal() bool {
	return s != PaymentStatusPending
}
