package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newStripeTestProcessor(t *testing.T, handler http.HandlerFunc) *StripeProcessor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeProcessor(StripeConfig{SecretKey: "sk_test_123", Backend: backend})
}

func TestStripeProcessor_CreateIntent(t *testing.T) {
	t.Parallel()

	processor := newStripeTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "7550", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":7550,"currency":"usd","client_secret":"pi_123_secret_abc","status":"requires_payment_method"}`))
	})

	intent, err := processor.CreateIntent(context.Background(), model.MustParseAmount("75.50"))
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
}

func TestStripeProcessor_GetIntent(t *testing.T) {
	t.Parallel()

	processor := newStripeTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/v1/payment_intents/pi_ok" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"pi_ok","object":"payment_intent","amount":1000,"currency":"usd","status":"succeeded"}`))
	})

	charge, err := processor.GetIntent(context.Background(), "pi_ok")
	require.NoError(t, err)
	assert.True(t, charge.Succeeded)
	assert.Equal(t, "10.00", charge.Amount.String())

	_, err = processor.GetIntent(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestStripeProcessor_UpstreamFailure(t *testing.T) {
	t.Parallel()

	processor := newStripeTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := processor.CreateIntent(context.Background(), model.MustParseAmount("1"))
	require.ErrorIs(t, err, ErrPaymentProcessor)
	assert.ErrorIs(t, err, ErrKindUpstream)
	assert.Contains(t, err.Error(), "declined")
}

func TestStripeProcessor_RejectsAmountBeyondMinorUnits(t *testing.T) {
	t.Parallel()

	called := false
	processor := newStripeTestProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusInternalServerError)
	})

	ceiling := model.MustParseAmount("92233720368547758.07")
	_, err := processor.CreateIntent(context.Background(), ceiling.Add(ceiling))
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.False(t, called)
}
