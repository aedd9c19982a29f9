package model

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProblemConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		p      *ProblemDetails
		status int
		slug   string
		title  string
		code   ErrorCode
		detail string
	}{
		{"unauthorized", NewUnauthorizedError("missing token"), http.StatusUnauthorized, "unauthorized", "Unauthorized", ErrCodeUnauthorized, "missing token"},
		{"forbidden", NewForbiddenError("admin role required"), http.StatusForbidden, "forbidden", "Forbidden", ErrCodeForbidden, "admin role required"},
		{"not found", NewNotFoundError("campaign"), http.StatusNotFound, "not-found", "Not Found", ErrCodeNotFound, "campaign not found"},
		{"conflict", NewConflictError("pet has already been adopted"), http.StatusConflict, "conflict", "Conflict", ErrCodeConflict, "pet has already been adopted"},
		{"bad request", NewBadRequestError("invalid request body"), http.StatusBadRequest, "bad-request", "Bad Request", ErrCodeInvalidInput, "invalid request body"},
		{"internal default", NewInternalError(""), http.StatusInternalServerError, "internal", "Internal Server Error", ErrCodeInternal, "An unexpected error occurred"},
		{"internal", NewInternalError("record payment: boom"), http.StatusInternalServerError, "internal", "Internal Server Error", ErrCodeInternal, "record payment: boom"},
		{"upstream", NewUpstreamError("store unavailable"), http.StatusBadGateway, "upstream", "Upstream Service Error", ErrCodeExternalAPI, "store unavailable"},
		{"partial failure", NewPartialFailureError("queued"), http.StatusBadGateway, "partial-failure", "Partial Failure", ErrCodePartialFailure, "queued"},
		{"rate limited", NewRateLimitError(30), http.StatusTooManyRequests, "rate-limited", "Too Many Requests", ErrCodeRateLimited, "Rate limit exceeded. Retry after 30 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Status != tt.status {
				t.Errorf("status: expected %d, got %d", tt.status, tt.p.Status)
			}
			if tt.p.Type != problemBase+tt.slug {
				t.Errorf("type: expected %q, got %q", problemBase+tt.slug, tt.p.Type)
			}
			if tt.p.Title != tt.title {
				t.Errorf("title: expected %q, got %q", tt.title, tt.p.Title)
			}
			if tt.p.Code != tt.code {
				t.Errorf("code: expected %d, got %d", tt.code, tt.p.Code)
			}
			if tt.p.Detail != tt.detail {
				t.Errorf("detail: expected %q, got %q", tt.detail, tt.p.Detail)
			}
		})
	}
}

func TestNewValidationError_Detail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		errs   []FieldError
		detail string
	}{
		{nil, "One or more fields failed validation"},
		{[]FieldError{{Field: "amount", Message: "must be positive"}}, "amount: must be positive"},
		{[]FieldError{
			{Field: "pet_name", Message: "required"},
			{Field: "max_donation", Message: "must be positive"},
			{Field: "last_date", Message: "required"},
		}, "pet_name: required (and 2 more errors)"},
	}

	for _, tt := range tests {
		p := NewValidationError(tt.errs)
		if p.Detail != tt.detail {
			t.Errorf("expected %q, got %q", tt.detail, p.Detail)
		}
		if p.Status != http.StatusUnprocessableEntity || p.Code != ErrCodeValidation {
			t.Errorf("unexpected status/code %d/%d", p.Status, p.Code)
		}
		if len(p.Errors) != len(tt.errs) {
			t.Errorf("expected %d field errors, got %d", len(tt.errs), len(p.Errors))
		}
	}
}

func TestProblemDetails_WithCode(t *testing.T) {
	t.Parallel()

	p := NewForbiddenError("only the owner or an admin may do this").WithCode(ErrCodeNotOwner)
	if p.Code != ErrCodeNotOwner || p.Status != http.StatusForbidden {
		t.Errorf("WithCode should only change the code, got %d/%d", p.Status, p.Code)
	}
}

func TestProblemDetails_Error(t *testing.T) {
	t.Parallel()

	var err error = NewNotFoundError("pet")
	if err.Error() != "[404] Not Found: pet not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestProblemDetails_WriteJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewValidationError([]FieldError{{Field: "email", Message: "invalid email format"}}).WriteJSON(rr)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem content type, got %q", ct)
	}

	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	for _, key := range []string{"type", "title", "status", "detail", "errors", "code"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing %q in %s", key, rr.Body.String())
		}
	}
	if _, ok := raw["instance"]; ok {
		t.Error("empty instance should be omitted")
	}
}

func TestErrorCodes_GroupedByClass(t *testing.T) {
	t.Parallel()

	classes := map[int][]ErrorCode{
		1: {ErrCodeUnauthorized, ErrCodeTokenInvalid},
		2: {ErrCodeForbidden, ErrCodeNotOwner},
		3: {ErrCodeNotFound, ErrCodeAlreadyExists, ErrCodeConflict},
		4: {ErrCodeValidation, ErrCodeInvalidInput, ErrCodeRateLimited},
		5: {ErrCodeInternal, ErrCodeDatabase, ErrCodeExternalAPI, ErrCodePartialFailure},
	}

	seen := map[ErrorCode]bool{}
	for class, codes := range classes {
		for _, code := range codes {
			if int(code)/1000 != class {
				t.Errorf("code %d is outside class %dxxx", code, class)
			}
			if seen[code] {
				t.Errorf("code %d is used twice", code)
			}
			seen[code] = true
		}
	}
}

func TestProblemTypes_ShareBase(t *testing.T) {
	t.Parallel()

	for _, p := range []*ProblemDetails{
		NewUnauthorizedError(""), NewForbiddenError(""), NewNotFoundError("x"),
		NewConflictError(""), NewBadRequestError(""), NewValidationError(nil),
		NewInternalError(""), NewUpstreamError(""), NewPartialFailureError(""),
		NewRateLimitError(1),
	} {
		if !strings.HasPrefix(p.Type, "https://api.petzadopt.app/errors/") {
			t.Errorf("unexpected type %q", p.Type)
		}
	}
}
