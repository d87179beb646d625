package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Payment flow errors
	ErrSignatureInvalid    = errors.New("webhook signature invalid")
	ErrUnknownPayment      = errors.New("payment not found for gateway id")
	ErrDuplicateGatewayID  = errors.New("gateway payment id already recorded")
	ErrInvalidTransition   = errors.New("payment status transition not allowed")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrSimulationDisabled  = errors.New("payment simulation disabled in this environment")
)
