package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error number. The thousands digit
// groups codes by class; clients may switch on either.
type ErrorCode int

const (
	// Authentication (1xxx)
	ErrCodeUnauthorized ErrorCode = 1001
	ErrCodeTokenInvalid ErrorCode = 1003

	// Authorization (2xxx)
	ErrCodeForbidden ErrorCode = 2001
	ErrCodeNotOwner  ErrorCode = 2002

	// Resource state (3xxx)
	ErrCodeNotFound      ErrorCode = 3001
	ErrCodeAlreadyExists ErrorCode = 3002
	ErrCodeConflict      ErrorCode = 3003

	// Request (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeRateLimited  ErrorCode = 4003

	// Server and upstream (5xxx)
	ErrCodeInternal       ErrorCode = 5001
	ErrCodeDatabase       ErrorCode = 5002
	ErrCodeExternalAPI    ErrorCode = 5003
	ErrCodePartialFailure ErrorCode = 5004
)

const problemBase = "https://api.petzadopt.app/errors/"

// problemKind is the fixed part of a problem: its type slug, title, status
// and default code
type problemKind struct {
	slug   string
	title  string
	status int
	code   ErrorCode
}

var (
	kindUnauthorized   = problemKind{"unauthorized", "Unauthorized", http.StatusUnauthorized, ErrCodeUnauthorized}
	kindForbidden      = problemKind{"forbidden", "Forbidden", http.StatusForbidden, ErrCodeForbidden}
	kindNotFound       = problemKind{"not-found", "Not Found", http.StatusNotFound, ErrCodeNotFound}
	kindConflict       = problemKind{"conflict", "Conflict", http.StatusConflict, ErrCodeConflict}
	kindBadRequest     = problemKind{"bad-request", "Bad Request", http.StatusBadRequest, ErrCodeInvalidInput}
	kindValidation     = problemKind{"validation", "Validation Error", http.StatusUnprocessableEntity, ErrCodeValidation}
	kindRateLimited    = problemKind{"rate-limited", "Too Many Requests", http.StatusTooManyRequests, ErrCodeRateLimited}
	kindInternal       = problemKind{"internal", "Internal Server Error", http.StatusInternalServerError, ErrCodeInternal}
	kindUpstream       = problemKind{"upstream", "Upstream Service Error", http.StatusBadGateway, ErrCodeExternalAPI}
	kindPartialFailure = problemKind{"partial-failure", "Partial Failure", http.StatusBadGateway, ErrCodePartialFailure}
)

func newProblem(kind problemKind, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemBase + kind.slug,
		Title:  kind.title,
		Status: kind.status,
		Detail: detail,
		Code:   kind.code,
	}
}

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	Code     ErrorCode    `json:"code,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WithCode narrows the problem's code, keeping its status and type
func (p *ProblemDetails) WithCode(code ErrorCode) *ProblemDetails {
	p.Code = code
	return p
}

func NewUnauthorizedError(detail string) *ProblemDetails {
	return newProblem(kindUnauthorized, detail)
}

func NewForbiddenError(detail string) *ProblemDetails {
	return newProblem(kindForbidden, detail)
}

// NewNotFoundError names the missing resource, e.g. "campaign not found"
func NewNotFoundError(resource string) *ProblemDetails {
	return newProblem(kindNotFound, resource+" not found")
}

// NewValidationError summarises the first field error in Detail and lists
// all of them in Errors
func NewValidationError(errs []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	switch len(errs) {
	case 0:
	case 1:
		detail = errs[0].Field + ": " + errs[0].Message
	default:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", errs[0].Field, errs[0].Message, len(errs)-1)
	}
	p := newProblem(kindValidation, detail)
	p.Errors = errs
	return p
}

func NewConflictError(detail string) *ProblemDetails {
	return newProblem(kindConflict, detail)
}

func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return newProblem(kindInternal, detail)
}

func NewBadRequestError(detail string) *ProblemDetails {
	return newProblem(kindBadRequest, detail)
}

// NewUpstreamError reports a failed call to the store or payment processor
func NewUpstreamError(detail string) *ProblemDetails {
	return newProblem(kindUpstream, detail)
}

// NewPartialFailureError reports a ledger write whose outcome is unknown.
// The campaign has been queued for reconciliation.
func NewPartialFailureError(detail string) *ProblemDetails {
	return newProblem(kindPartialFailure, detail)
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return newProblem(kindRateLimited, fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}
