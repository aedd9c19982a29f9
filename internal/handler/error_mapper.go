package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/petzadopt/internal/middleware"
	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Service errors carry a kind, so the status follows from the kind and the
// detail from the specific error.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== 401 =====
	case errors.Is(err, service.ErrInvalidToken):
		return model.NewUnauthorizedError(err.Error()).WithCode(model.ErrCodeTokenInvalid)
	case errors.Is(err, service.ErrKindUnauthorized):
		return model.NewUnauthorizedError(err.Error())

	// ===== 403 =====
	case errors.Is(err, service.ErrNotOwner):
		return model.NewForbiddenError(err.Error()).WithCode(model.ErrCodeNotOwner)
	case errors.Is(err, service.ErrKindForbidden):
		return model.NewForbiddenError(err.Error())

	// ===== 404 =====
	case errors.Is(err, service.ErrPetNotFound):
		return model.NewNotFoundError("pet")
	case errors.Is(err, service.ErrAdoptionNotFound):
		return model.NewNotFoundError("adoption request")
	case errors.Is(err, service.ErrCampaignNotFound):
		return model.NewNotFoundError("campaign")
	case errors.Is(err, service.ErrPaymentNotFound):
		return model.NewNotFoundError("payment")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrKindNotFound):
		return model.NewNotFoundError("resource")

	// ===== 409 =====
	case errors.Is(err, service.ErrDuplicatePayment), errors.Is(err, service.ErrAdoptionExists):
		return model.NewConflictError(err.Error()).WithCode(model.ErrCodeAlreadyExists)
	case errors.Is(err, service.ErrKindConflict):
		return model.NewConflictError(err.Error())

	// ===== 422 =====
	case errors.Is(err, service.ErrInvalidAmount):
		return model.NewValidationError([]model.FieldError{{Field: "amount", Message: err.Error()}})
	case errors.Is(err, service.ErrProcessorRefRequired):
		return model.NewValidationError([]model.FieldError{{Field: "transaction_id", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidID):
		return model.NewValidationError([]model.FieldError{{Field: "id", Message: err.Error()}})
	case errors.Is(err, service.ErrKindValidation):
		return model.NewValidationError([]model.FieldError{{Field: "request", Message: err.Error()}})

	// ===== 502 =====
	// The ledger may or may not have committed; the client must not retry
	// blindly, and the campaign is already queued for reconciliation.
	case errors.Is(err, service.ErrKindPartialFailure):
		return model.NewPartialFailureError(service.ErrPartialFailure.Error())
	case errors.Is(err, service.ErrPaymentProcessor):
		return model.NewUpstreamError(service.ErrPaymentProcessor.Error())
	case errors.Is(err, service.ErrKindUpstream):
		return model.NewUpstreamError(service.ErrStoreUnavailable.Error()).WithCode(model.ErrCodeDatabase)

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}

// writeServiceError maps err and logs the causes a client never sees
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	pd := MapServiceErrorWithContext(err, operation)
	if pd.Status >= 500 {
		slog.ErrorContext(r.Context(), operation+" failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"status", pd.Status,
			"error", err,
		)
	}
	WriteError(w, pd)
}
