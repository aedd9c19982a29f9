package service

import (
	"errors"
	"fmt"

	"github.com/forgo/petzadopt/internal/database"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.
//
// Every specific error belongs to one kind. errors.Is matches both:
//
//	errors.Is(ErrCampaignNotFound, ErrCampaignNotFound) // true
//	errors.Is(ErrCampaignNotFound, ErrKindNotFound)     // true

// ===== Error Kinds =====
var (
	ErrKindNotFound       = errors.New("not found")
	ErrKindConflict       = errors.New("conflict")
	ErrKindUnauthorized   = errors.New("unauthorized")
	ErrKindForbidden      = errors.New("forbidden")
	ErrKindValidation     = errors.New("validation error")
	ErrKindUpstream       = errors.New("upstream error")
	ErrKindPartialFailure = errors.New("partial failure")
)

// kindError is a specific error that also reports its kind
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// ===== Auth Errors =====
var (
	ErrUnauthorized = newError(ErrKindUnauthorized, "authentication required")
	ErrInvalidToken = newError(ErrKindUnauthorized, "invalid or expired token")
	ErrForbidden    = newError(ErrKindForbidden, "admin role required")
	ErrNotOwner     = newError(ErrKindForbidden, "only the owner or an admin may do this")
)

// ===== User Errors =====
var (
	ErrUserNotFound = newError(ErrKindNotFound, "user not found")
	ErrInvalidEmail = newError(ErrKindValidation, "invalid email format")
	ErrInvalidID    = newError(ErrKindValidation, "invalid id")
)

// ===== Pet Errors =====
var (
	ErrPetNotFound       = newError(ErrKindNotFound, "pet not found")
	ErrPetAlreadyAdopted = newError(ErrKindConflict, "pet has already been adopted")
)

// ===== Adoption Errors =====
var (
	ErrAdoptionNotFound   = newError(ErrKindNotFound, "adoption request not found")
	ErrAdoptionExists     = newError(ErrKindConflict, "adoption already requested for this pet")
	ErrAdoptionNotPending = newError(ErrKindConflict, "adoption request is no longer pending")
	ErrAdoptionContention = newError(ErrKindConflict, "adoption request is being updated concurrently, retry later")
	ErrCannotAdoptOwnPet  = newError(ErrKindValidation, "cannot request adoption of your own pet")
)

// ===== Campaign Errors =====
var (
	ErrCampaignNotFound = newError(ErrKindNotFound, "campaign not found")
	ErrCampaignPaused   = newError(ErrKindConflict, "campaign is paused")
)

// ===== Ledger Errors =====
var (
	ErrInvalidAmount        = newError(ErrKindValidation, "amount must be a positive decimal with at most two fraction digits")
	ErrProcessorRefRequired = newError(ErrKindValidation, "processor transaction reference is required")
	ErrPaymentNotFound      = newError(ErrKindNotFound, "payment not found")
	ErrDuplicatePayment     = newError(ErrKindConflict, "payment reference already recorded")
	ErrPaymentMismatch      = newError(ErrKindConflict, "payment does not match the processor's record")
	ErrNegativeTotal        = newError(ErrKindConflict, "reversal would make the donated amount negative")
	ErrLedgerContention     = newError(ErrKindConflict, "campaign is being updated concurrently, retry later")
	ErrPartialFailure       = newError(ErrKindPartialFailure, "ledger write outcome unknown, queued for reconciliation")
)

// ===== Upstream Errors =====
var (
	ErrStoreUnavailable = newError(ErrKindUpstream, "store unavailable")
	ErrPaymentProcessor = newError(ErrKindUpstream, "payment processor error")
)

// storeError wraps a repository failure as an upstream error, keeping the
// database cause in the chain for logging.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrKindNotFound) || errors.Is(err, ErrKindConflict) ||
		errors.Is(err, ErrKindValidation) || errors.Is(err, ErrKindForbidden) {
		return err
	}
	if errors.Is(err, database.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
