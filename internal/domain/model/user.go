package model

import "time"

// User is the identity slice this service needs. Accounts are owned by the
// main platform; billing only reads them.
type User struct {
	ID            string // UUID
	Username      string
	Email         string
	EmailVerified bool
	RegisteredAt  time.Time
}
