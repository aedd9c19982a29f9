package handler

import (
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

// TokenIssuer signs bearer tokens
type TokenIssuer interface {
	IssueToken(email, name string) (*service.IssuedToken, error)
}

// TokenHandler serves the token endpoint
type TokenHandler struct {
	issuer TokenIssuer
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(issuer TokenIssuer) *TokenHandler {
	return &TokenHandler{issuer: issuer}
}

// TokenRequest is the body of POST /v1/jwt
type TokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Issue handles POST /v1/jwt - sign a token for the supplied identity.
// Identity is established upstream by the client's sign-in provider.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "email", Message: "email is required"},
		}))
		return
	}

	token, err := h.issuer.IssueToken(req.Email, req.Name)
	if err != nil {
		writeServiceError(w, r, err, "issue token")
		return
	}

	WriteData(w, http.StatusOK, token, nil)
}
