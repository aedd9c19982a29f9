package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgo/petzadopt/pkg/jwt"
)

// ============================================================================
// Mock TokenVerifier
// ============================================================================

type mockVerifier struct {
	verifyFunc func(token string) (*jwt.Claims, error)
}

func (m *mockVerifier) VerifyToken(token string) (*jwt.Claims, error) {
	return m.verifyFunc(token)
}

// successVerifier returns valid claims for any token
func successVerifier(email string) *mockVerifier {
	return &mockVerifier{
		verifyFunc: func(token string) (*jwt.Claims, error) {
			return &jwt.Claims{Subject: email, Email: email}, nil
		},
	}
}

// errorVerifier returns the specified error
func errorVerifier(err error) *mockVerifier {
	return &mockVerifier{
		verifyFunc: func(token string) (*jwt.Claims, error) {
			return nil, err
		},
	}
}

// ============================================================================
// Test Helpers
// ============================================================================

func newTestRequest(authHeader string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

// captureHandler captures the request context for inspection
type captureHandler struct {
	called bool
	ctx    context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

// ============================================================================
// Auth() Middleware Tests
// ============================================================================

func TestAuth_RejectsBadHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic sometoken"},
		{"bearer only", "Bearer"},
		{"bearer no space", "Bearertoken"},
		{"bearer empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := &captureHandler{}
			rr := httptest.NewRecorder()

			Auth(successVerifier("a@x.io"))(handler).ServeHTTP(rr, newTestRequest(tt.header))

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
			if handler.called {
				t.Error("handler should not have been called")
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("expected problem+json, got %q", ct)
			}
		})
	}
}

func TestAuth_ValidToken_SetsContext_CallsNext(t *testing.T) {
	t.Parallel()
	handler := &captureHandler{}
	rr := httptest.NewRecorder()

	Auth(successVerifier("ann@example.com"))(handler).ServeHTTP(rr, newTestRequest("Bearer good-token"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Fatal("handler should have been called")
	}
	if got := GetUserEmail(handler.ctx); got != "ann@example.com" {
		t.Errorf("expected email 'ann@example.com', got %q", got)
	}
	if claims := GetClaims(handler.ctx); claims == nil || claims.Subject != "ann@example.com" {
		t.Errorf("expected claims in context, got %+v", claims)
	}
}

func TestAuth_ValidToken_CaseInsensitiveBearer(t *testing.T) {
	t.Parallel()
	handler := &captureHandler{}
	rr := httptest.NewRecorder()

	Auth(successVerifier("ann@example.com"))(handler).ServeHTTP(rr, newTestRequest("bearer good-token"))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestAuth_PassesTokenToVerifier(t *testing.T) {
	t.Parallel()
	var seen string
	verifier := &mockVerifier{
		verifyFunc: func(token string) (*jwt.Claims, error) {
			seen = token
			return &jwt.Claims{Email: "ann@example.com"}, nil
		},
	}

	Auth(verifier)(&captureHandler{}).ServeHTTP(httptest.NewRecorder(), newTestRequest("Bearer abc.def.ghi"))

	if seen != "abc.def.ghi" {
		t.Errorf("expected verifier to see 'abc.def.ghi', got %q", seen)
	}
}

func TestAuth_VerifierErrors_ReturnUnauthorized(t *testing.T) {
	t.Parallel()

	for _, err := range []error{jwt.ErrTokenExpired, jwt.ErrInvalidSignature, errors.New("boom")} {
		handler := &captureHandler{}
		rr := httptest.NewRecorder()

		Auth(errorVerifier(err))(handler).ServeHTTP(rr, newTestRequest("Bearer bad"))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%v: expected status %d, got %d", err, http.StatusUnauthorized, rr.Code)
		}
		if handler.called {
			t.Errorf("%v: handler should not have been called", err)
		}
	}
}

// ============================================================================
// OptionalAuth() Middleware Tests
// ============================================================================

func TestOptionalAuth_NoHeader_Proceeds(t *testing.T) {
	t.Parallel()
	handler := &captureHandler{}
	rr := httptest.NewRecorder()

	OptionalAuth(successVerifier("ann@example.com"))(handler).ServeHTTP(rr, newTestRequest(""))

	if !handler.called {
		t.Fatal("handler should have been called")
	}
	if got := GetUserEmail(handler.ctx); got != "" {
		t.Errorf("expected empty email, got %q", got)
	}
}

func TestOptionalAuth_ValidToken_SetsContext(t *testing.T) {
	t.Parallel()
	handler := &captureHandler{}
	rr := httptest.NewRecorder()

	OptionalAuth(successVerifier("ann@example.com"))(handler).ServeHTTP(rr, newTestRequest("Bearer good"))

	if got := GetUserEmail(handler.ctx); got != "ann@example.com" {
		t.Errorf("expected email 'ann@example.com', got %q", got)
	}
}

func TestOptionalAuth_InvalidToken_ProceedsWithoutAuth(t *testing.T) {
	t.Parallel()
	handler := &captureHandler{}
	rr := httptest.NewRecorder()

	OptionalAuth(errorVerifier(jwt.ErrTokenExpired))(handler).ServeHTTP(rr, newTestRequest("Bearer expired"))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !handler.called {
		t.Fatal("handler should have been called")
	}
	if GetClaims(handler.ctx) != nil {
		t.Error("expected no claims in context")
	}
}

// ============================================================================
// Context Accessor Tests
// ============================================================================

func TestGetUserEmail(t *testing.T) {
	t.Parallel()

	if got := GetUserEmail(WithUserEmail(context.Background(), "a@x.io")); got != "a@x.io" {
		t.Errorf("expected 'a@x.io', got %q", got)
	}
	if got := GetUserEmail(context.Background()); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	wrongType := context.WithValue(context.Background(), UserEmailKey, 12345)
	if got := GetUserEmail(wrongType); got != "" {
		t.Errorf("expected empty string for wrong type, got %q", got)
	}
}

func TestGetClaims(t *testing.T) {
	t.Parallel()

	expected := &jwt.Claims{Email: "a@x.io", Role: "admin"}
	ctx := context.WithValue(context.Background(), ClaimsKey, expected)
	if got := GetClaims(ctx); got != expected {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
	if GetClaims(context.Background()) != nil {
		t.Error("expected nil claims")
	}
	wrongType := context.WithValue(context.Background(), ClaimsKey, "not claims")
	if GetClaims(wrongType) != nil {
		t.Error("expected nil for wrong type")
	}
}

func TestAuth_ReusesClaimsFromOptionalAuth(t *testing.T) {
	t.Parallel()

	calls := 0
	verifier := &mockVerifier{verifyFunc: func(token string) (*jwt.Claims, error) {
		calls++
		return &jwt.Claims{Subject: "ann@example.com", Email: "ann@example.com"}, nil
	}}
	handler := &captureHandler{}

	mw := OptionalAuth(verifier)(Auth(verifier)(handler))
	mw.ServeHTTP(httptest.NewRecorder(), newTestRequest("Bearer good"))

	if calls != 1 {
		t.Errorf("token should be verified once, got %d", calls)
	}
	if GetUserEmail(handler.ctx) != "ann@example.com" {
		t.Errorf("expected caller in context, got %q", GetUserEmail(handler.ctx))
	}
}
