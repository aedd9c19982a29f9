package jwt

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidKey       = errors.New("invalid key")
)

// Claims is the token payload. Sign fills in iss, iat and nbf, and exp when
// it is zero.
type Claims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	JWTID     string `json:"jti,omitempty"`

	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	UserID string `json:"user_id,omitempty"`
	// Role is informational; authorization reads the stored user role
	Role string `json:"role,omitempty"`
}

func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// Valid checks the time window. A zero exp or nbf is not enforced.
func (c *Claims) Valid() error {
	return c.validAt(time.Now().Unix())
}

func (c *Claims) validAt(now int64) error {
	switch {
	case c.ExpiresAt != 0 && now > c.ExpiresAt:
		return ErrTokenExpired
	case c.NotBefore != 0 && now < c.NotBefore:
		return ErrTokenNotYetValid
	}
	return nil
}
