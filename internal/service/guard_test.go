package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingUsers struct{}

func (failingUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, errors.New("connection reset")
}

func TestGuard_IssueAndVerify(t *testing.T) {
	t.Parallel()
	guard := NewGuard(GuardConfig{
		JWTService: jwt.NewTestHMACService("s3cret", "petzadopt-test", time.Hour),
		Users:      newMemUsers(),
	})

	issued, err := guard.IssueToken(" donor@test.local ", "Donor")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.Equal(t, 3600, issued.ExpiresIn)

	claims, err := guard.VerifyToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "donor@test.local", claims.Email)
	assert.Equal(t, "Donor", claims.Name)

	_, err = guard.IssueToken("nope", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestGuard_VerifyTokenFailures(t *testing.T) {
	t.Parallel()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	guard := NewGuard(GuardConfig{JWTService: jwt.NewTestService(key, "petzadopt-test", time.Hour)})
	expired := jwt.NewTestService(key, "petzadopt-test", -time.Minute)
	otherIssuer := jwt.NewTestService(key, "someone-else", time.Hour)
	hmac := jwt.NewTestHMACService("s3cret", "petzadopt-test", time.Hour)

	sign := func(svc *jwt.Service) string {
		token, err := svc.Sign(jwt.Claims{Subject: "a@test.local", Email: "a@test.local"})
		require.NoError(t, err)
		return token
	}

	_, err = guard.VerifyToken("")
	assert.ErrorIs(t, err, ErrUnauthorized)

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"expired":      sign(expired),
		"wrong issuer": sign(otherIssuer),
		"wrong alg":    sign(hmac),
	} {
		_, err := guard.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
		assert.ErrorIs(t, err, ErrKindUnauthorized, name)
	}
}

func TestGuard_VerifyAdmin(t *testing.T) {
	t.Parallel()
	users := newMemUsers(
		&model.User{ID: "user:a", Email: "a@test.local", Role: model.UserRoleAdmin},
		&model.User{ID: "user:u", Email: "u@test.local", Role: model.UserRoleUser},
	)
	guard := NewGuard(GuardConfig{Users: users})
	ctx := context.Background()

	assert.NoError(t, guard.VerifyAdmin(ctx, "a@test.local"))
	assert.ErrorIs(t, guard.VerifyAdmin(ctx, "u@test.local"), ErrForbidden)
	assert.ErrorIs(t, guard.VerifyAdmin(ctx, "ghost@test.local"), ErrForbidden)
	assert.ErrorIs(t, guard.VerifyAdmin(ctx, ""), ErrForbidden)

	ok, err := guard.IsAdmin(ctx, "u@test.local")
	require.NoError(t, err)
	assert.False(t, ok)

	broken := NewGuard(GuardConfig{Users: failingUsers{}})
	_, err = broken.IsAdmin(ctx, "a@test.local")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
