package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes ledger errors.
type ErrorCode string

const (
	// ErrCodeConstraintViolation indicates a uniqueness, foreign-key or check
	// failure reported by the store. The driver error is kept verbatim.
	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeInvalidPricingOption indicates a pricing option that belongs to a
	// different membership type than the membership being renewed.
	ErrCodeInvalidPricingOption ErrorCode = "INVALID_PRICING_OPTION"

	// ErrCodePaymentItemAlreadyAllocated indicates a payment item that is
	// already linked to a dues or door-fee payment.
	ErrCodePaymentItemAlreadyAllocated ErrorCode = "PAYMENT_ITEM_ALREADY_ALLOCATED"

	// ErrCodeOrderingViolation indicates an end date that would precede the
	// date it must follow.
	ErrCodeOrderingViolation ErrorCode = "ORDERING_VIOLATION"

	// ErrCodeNoFeeDefined indicates neither the event nor its event type
	// defines a door fee for the membership type.
	ErrCodeNoFeeDefined ErrorCode = "NO_FEE_DEFINED"

	// ErrCodeSheetAlreadyProjected indicates a guest info sheet that already
	// references a person.
	ErrCodeSheetAlreadyProjected ErrorCode = "SHEET_ALREADY_PROJECTED"

	// ErrCodeNotFound indicates a referenced row does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidArgument indicates caller input that fails validation
	// before reaching the store.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeSponsorNotActiveMember indicates a guest-of-member sponsor with no
	// active membership on the event date.
	ErrCodeSponsorNotActiveMember ErrorCode = "SPONSOR_NOT_ACTIVE_MEMBER"

	// ErrCodeNonMemberFeesDisabled indicates a non-member door fee lookup while
	// the organization does not charge non-members.
	ErrCodeNonMemberFeesDisabled ErrorCode = "NON_MEMBER_FEES_DISABLED"

	// ErrCodeAmountMismatch indicates a payment item whose amount differs from
	// the price or fee it is being applied to.
	ErrCodeAmountMismatch ErrorCode = "AMOUNT_MISMATCH"

	// ErrCodeMembershipNotApproved indicates a membership created for a person
	// with no approval on or before its begin date.
	ErrCodeMembershipNotApproved ErrorCode = "MEMBERSHIP_NOT_APPROVED"

	// ErrCodeConcurrentUpdate indicates a membership end date changed between
	// being read and being written.
	ErrCodeConcurrentUpdate ErrorCode = "CONCURRENT_UPDATE"
)

// LedgerError is the single error type returned by the ledger. Callers match
// on Code; none of these are retried automatically.
type LedgerError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details carries identifiers of the rows involved.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LedgerError) Unwrap() error { return e.Err }

// NewError creates a LedgerError without an underlying cause.
func NewError(code ErrorCode, format string, args ...any) *LedgerError {
	return &LedgerError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a LedgerError around err.
func WrapError(code ErrorCode, err error, format string, args ...any) *LedgerError {
	return &LedgerError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithDetail returns e with key set in its details.
func (e *LedgerError) WithDetail(key string, value any) *LedgerError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = fmt.Sprint(value)
	return e
}

// CodeOf returns the code of the first LedgerError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsNotFound reports whether err is a NOT_FOUND ledger error.
func IsNotFound(err error) bool { return IsCode(err, ErrCodeNotFound) }

// IsConstraintViolation reports whether err is a CONSTRAINT_VIOLATION.
func IsConstraintViolation(err error) bool { return IsCode(err, ErrCodeConstraintViolation) }
