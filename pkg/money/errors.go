package money

import "errors"

// Common money package errors
var (
	// ErrInvalidAmount is returned when an amount is not a number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAmount is returned when an amount is below zero.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidRate is returned when an exchange rate is zero or negative.
	ErrInvalidRate = errors.New("exchange rate must be positive")
)
