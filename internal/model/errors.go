package model

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned for missing or malformed fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientBalance is returned when a purchase would take the
	// buyer's balance below zero. No writes are applied.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidTransition is returned when an order status change does
	// not follow placed -> seen -> shipped.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrAmountNotPositive is returned when a gift amount or item price
	// is zero or negative.
	ErrAmountNotPositive = errors.New("amount must be positive")
	// ErrPermissionDenied is returned when a non-admin calls an
	// administrative operation.
	ErrPermissionDenied = errors.New("permission denied")
)
