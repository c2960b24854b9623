package game

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrClaimExpired        = errors.New("claim_expired")
	ErrPeriodNotFound      = errors.New("period_not_found")
)
