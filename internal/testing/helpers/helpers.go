package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/pkg/jwt"
)

// TestIssuer is the issuer of every token minted here
const TestIssuer = "petzadopt-test"

const testSecret = "petzadopt-test-secret-0123456789abcdef"

// NewTestJWTService returns an HS256 service with a fixed secret
func NewTestJWTService(t *testing.T) *jwt.Service {
	t.Helper()
	return jwt.NewTestHMACService(testSecret, TestIssuer, 15*time.Minute)
}

// JWTHelper mints bearer tokens. Pass Service() to the guard under test so
// both sides share a key.
type JWTHelper struct {
	service *jwt.Service
}

func NewJWTHelper(t *testing.T) *JWTHelper {
	t.Helper()
	return &JWTHelper{service: NewTestJWTService(t)}
}

func (h *JWTHelper) Service() *jwt.Service {
	return h.service
}

// GenerateToken returns a valid token for email
func (h *JWTHelper) GenerateToken(t *testing.T, email string) string {
	t.Helper()
	return h.mint(t, jwt.Claims{Subject: email, Email: email})
}

// GenerateExpiredToken returns a token for email that expired an hour ago
func (h *JWTHelper) GenerateExpiredToken(t *testing.T, email string) string {
	t.Helper()
	return h.mint(t, jwt.Claims{
		Subject:   email,
		Email:     email,
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
}

func (h *JWTHelper) mint(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := h.service.Sign(claims)
	if err != nil {
		t.Fatalf("helpers: sign token: %v", err)
	}
	return token
}

// RequestBuilder assembles an httptest request. Build fails the test if the
// body cannot be encoded.
type RequestBuilder struct {
	t       *testing.T
	method  string
	target  string
	body    any
	header  http.Header
	tokens  *JWTHelper
	subject string
}

func NewRequest(t *testing.T, method, target string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{t: t, method: method, target: target, header: http.Header{}}
}

// WithBody sets a value to be sent as JSON
func (rb *RequestBuilder) WithBody(body any) *RequestBuilder {
	rb.body = body
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.header.Set(key, value)
	return rb
}

// WithAuth signs a fresh token for email when the request is built
func (rb *RequestBuilder) WithAuth(tokens *JWTHelper, email string) *RequestBuilder {
	rb.tokens, rb.subject = tokens, email
	return rb
}

func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var payload []byte
	if rb.body != nil {
		var err error
		if payload, err = json.Marshal(rb.body); err != nil {
			rb.t.Fatalf("helpers: encode body: %v", err)
		}
	}

	req := httptest.NewRequest(rb.method, rb.target, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range rb.header {
		req.Header[key] = values
	}
	if rb.tokens != nil && rb.subject != "" {
		req.Header.Set("Authorization", "Bearer "+rb.tokens.GenerateToken(rb.t, rb.subject))
	}
	return req
}

// AssertStatus reports the body along with an unexpected status
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status: want %d, got %d (body: %s)", want, rr.Code, rr.Body.String())
	}
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("helpers: body is not a problem document: %v (body: %s)", err, rr.Body.String())
	}
	return problem
}

// AssertProblemDetails checks status, content type and, unless code is
// zero, the problem code
func AssertProblemDetails(t *testing.T, rr *httptest.ResponseRecorder, status int, code model.ErrorCode) {
	t.Helper()

	AssertStatus(t, rr, status)
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type: want application/problem+json, got %q", ct)
	}

	problem := decodeProblem(t, rr)
	if problem.Status != status {
		t.Errorf("problem status: want %d, got %d", status, problem.Status)
	}
	if code != 0 && problem.Code != code {
		t.Errorf("problem code: want %d, got %d", code, problem.Code)
	}
}

// AssertValidationError expects a 422 that names field
func AssertValidationError(t *testing.T, rr *httptest.ResponseRecorder, field string) {
	t.Helper()

	AssertStatus(t, rr, http.StatusUnprocessableEntity)
	problem := decodeProblem(t, rr)
	if !slices.ContainsFunc(problem.Errors, func(fe model.FieldError) bool { return fe.Field == field }) {
		t.Errorf("no validation error for %q in %+v", field, problem.Errors)
	}
}

func DecodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("helpers: decode response: %v (body: %s)", err, rr.Body.String())
	}
}

// AssertRecordExists accepts either "table:key" or a bare key
func AssertRecordExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()
	if !recordExists(t, db, table, id) {
		t.Errorf("record %s:%s does not exist", table, recordKey(id))
	}
}

func AssertRecordNotExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()
	if recordExists(t, db, table, id) {
		t.Errorf("record %s:%s still exists", table, recordKey(id))
	}
}

func recordExists(t *testing.T, db database.Database, table, id string) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := db.Query(ctx, "SELECT id FROM type::record($table, $id)", map[string]interface{}{
		"table": table,
		"id":    recordKey(id),
	})
	switch {
	case errors.Is(err, database.ErrNotFound):
		return false
	case err != nil:
		t.Fatalf("helpers: look up %s:%s: %v", table, id, err)
	}
	return firstStatementHasRows(results)
}

func recordKey(id string) string {
	if _, key, ok := strings.Cut(id, ":"); ok {
		return key
	}
	return id
}

func firstStatementHasRows(results []interface{}) bool {
	if len(results) == 0 {
		return false
	}
	stmt, ok := results[0].(map[string]interface{})
	if !ok {
		return false
	}
	switch rows := stmt["result"].(type) {
	case nil:
		return false
	case []interface{}:
		return len(rows) > 0
	default:
		return true
	}
}
