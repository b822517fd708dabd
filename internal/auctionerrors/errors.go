package auctionerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrConcurrencyConflict = errors.New("listing was modified concurrently")
)

// business logic errors
var (
	ErrValidation         = errors.New("validation failed")
	ErrBidRejected        = errors.New("bid rejected")
	ErrListingClosed      = errors.New("listing is closed")
	ErrForbidden          = errors.New("action not allowed")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
)

// Validation failure reasons
const (
	ReasonEmpty            = "empty"
	ReasonTooLong          = "too_long"
	ReasonNonPositive      = "non_positive"
	ReasonTooLarge         = "too_large"
	ReasonTooPrecise       = "too_precise"
	ReasonCategoryConflict = "category_conflict"
	ReasonCategoryMissing  = "category_missing"
	ReasonInvalidURL       = "invalid_url"
	ReasonInvalidEmail     = "invalid_email"
	ReasonPasswordMismatch = "password_mismatch"
)

// Bid rejection reasons
const (
	ReasonNotHigher  = "not_higher"
	ReasonClosed     = "closed"
	ReasonOwnListing = "own_listing"
)

// ValidationError reports malformed or out-of-range input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// BidRejectedError is a well-formed bid that the listing's state does not allow.
type BidRejectedError struct {
	Reason string
}

func NewBidRejected(reason string) *BidRejectedError {
	return &BidRejectedError{Reason: reason}
}

func (e *BidRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBidRejected.Error(), e.Reason)
}

func (e *BidRejectedError) Unwrap() error {
	return ErrBidRejected
}

// Reason extracts the machine-readable reason from a validation or bid rejection error.
func Reason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var br *BidRejectedError
	if errors.As(err, &br) {
		return br.Reason
	}
	return ""
}
