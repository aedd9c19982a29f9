package service

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/pkg/jwt"
)

// UserLookup finds users by email for capability checks
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Guard issues and verifies bearer tokens and checks the admin capability.
// Token checks are stateless; the admin check always reads the stored role.
type Guard struct {
	jwtService *jwt.Service
	users      UserLookup
}

// GuardConfig holds configuration for the guard
type GuardConfig struct {
	JWTService *jwt.Service
	Users      UserLookup
}

// NewGuard creates a new guard
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{
		jwtService: cfg.JWTService,
		users:      cfg.Users,
	}
}

// IssuedToken is the response of the token endpoint
type IssuedToken struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// IssueToken signs a time-limited token for the supplied identity
func (g *Guard) IssueToken(email, name string) (*IssuedToken, error) {
	email = strings.TrimSpace(email)
	if !model.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	token, err := g.jwtService.Sign(jwt.Claims{
		Subject: email,
		Email:   email,
		Name:    strings.TrimSpace(name),
	})
	if err != nil {
		return nil, err
	}

	return &IssuedToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(g.jwtService.GetExpiration().Seconds()),
	}, nil
}

// VerifyToken checks signature, issuer and expiry.
// Every failure is ErrInvalidToken; the cause is not exposed.
func (g *Guard) VerifyToken(token string) (*jwt.Claims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := g.jwtService.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		claims.Email = claims.Subject
	}
	if claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAdmin succeeds only when the stored user with email has the admin
// role. An unknown email is Forbidden as well.
func (g *Guard) VerifyAdmin(ctx context.Context, email string) error {
	if email == "" {
		return ErrForbidden
	}

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		return storeError(err)
	}
	if user == nil || !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// IsAdmin reports whether email holds the admin role, treating lookup
// failures as errors rather than as "not admin".
func (g *Guard) IsAdmin(ctx context.Context, email string) (bool, error) {
	err := g.VerifyAdmin(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}
