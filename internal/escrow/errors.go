package escrow

import "errors"

var (
	// Input validation errors.
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidAddress = errors.New("invalid address")

	// Wizard-level errors.
	ErrValidationFailed = errors.New("validation failed")

	// Lifecycle errors.
	ErrInvalidTransition = errors.New("invalid transition")

	// Store errors.
	ErrNotFound = errors.New("not found")
)
