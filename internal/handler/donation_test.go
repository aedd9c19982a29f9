package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

// ============================================================================
// Mocks
// ============================================================================

type mockPayments struct {
	createIntentFunc  func(ctx context.Context, price string) (*model.PaymentIntent, error)
	recordPaymentFunc func(ctx context.Context, donorEmail string, req *model.CreatePaymentRequest) (*service.DonationReceipt, error)
}

func (m *mockPayments) CreateIntent(ctx context.Context, price string) (*model.PaymentIntent, error) {
	return m.createIntentFunc(ctx, price)
}

func (m *mockPayments) RecordPayment(ctx context.Context, donorEmail string, req *model.CreatePaymentRequest) (*service.DonationReceipt, error) {
	return m.recordPaymentFunc(ctx, donorEmail, req)
}

type mockLedger struct {
	reverseFunc   func(ctx context.Context, campaignID, amount string) (*model.Campaign, error)
	refundFunc    func(ctx context.Context, paymentID string) (*model.Payment, error)
	donorsFunc    func(ctx context.Context, campaignID string) ([]*model.Payment, error)
	donationsFunc func(ctx context.Context, donorEmail string) ([]*model.DonationView, error)
	reconcileFunc func(ctx context.Context, campaignID string, dryRun bool) (*service.ReconcileResult, error)
}

func (m *mockLedger) ReverseDonation(ctx context.Context, campaignID, amount string) (*model.Campaign, error) {
	return m.reverseFunc(ctx, campaignID, amount)
}

func (m *mockLedger) Refund(ctx context.Context, paymentID string) (*model.Payment, error) {
	return m.refundFunc(ctx, paymentID)
}

func (m *mockLedger) ListDonors(ctx context.Context, campaignID string) ([]*model.Payment, error) {
	return m.donorsFunc(ctx, campaignID)
}

func (m *mockLedger) ListDonationsForUser(ctx context.Context, donorEmail string) ([]*model.DonationView, error) {
	return m.donationsFunc(ctx, donorEmail)
}

func (m *mockLedger) Reconcile(ctx context.Context, campaignID string, dryRun bool) (*service.ReconcileResult, error) {
	return m.reconcileFunc(ctx, campaignID, dryRun)
}

func testReceipt(email string, req *model.CreatePaymentRequest) *service.DonationReceipt {
	amount := model.MustParseAmount(req.Amount)
	return &service.DonationReceipt{
		Payment: &model.Payment{
			ID:           "payment:p1",
			Email:        email,
			CampaignID:   req.CampaignID,
			Amount:       amount,
			ProcessorRef: req.TransactionID,
		},
		Campaign: &model.Campaign{ID: req.CampaignID, DonatedAmount: amount, Version: 1},
	}
}

// ============================================================================
// RecordPayment
// ============================================================================

func TestRecordPayment_CreditsCaller(t *testing.T) {
	t.Parallel()

	var donor string
	h := NewDonationHandler(&mockPayments{
		recordPaymentFunc: func(_ context.Context, email string, req *model.CreatePaymentRequest) (*service.DonationReceipt, error) {
			donor = email
			return testReceipt(email, req), nil
		},
	}, &mockLedger{})

	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/payments", model.CreatePaymentRequest{
		CampaignID:    "campaign:c1",
		Amount:        "25.00",
		TransactionID: "pi_123",
	}), "donor@test.local")
	rr := serve("POST /v1/payments", h.RecordPayment, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "donor@test.local", donor)

	var receipt service.DonationReceipt
	decodeData(t, rr.Body.Bytes(), &receipt)
	assert.Equal(t, "25.00", receipt.Campaign.DonatedAmount.String())
	assert.Equal(t, "pi_123", receipt.Payment.ProcessorRef)
}

func TestRecordPayment_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{})
	req := makeJSONRequest(http.MethodPost, "/v1/payments", model.CreatePaymentRequest{})
	rr := serve("POST /v1/payments", h.RecordPayment, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRecordPayment_MissingFields(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{})
	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/payments", model.CreatePaymentRequest{
		CampaignID: "campaign:c1",
	}), "donor@test.local")
	rr := serve("POST /v1/payments", h.RecordPayment, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	problem := parseErrorResponse(t, rr.Body.Bytes())
	assert.Len(t, problem.Errors, 2)
}

func TestRecordPayment_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{})
	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/payments", map[string]string{
		"campaign_id":    "campaign:c1",
		"amount":         "5.00",
		"transaction_id": "pi_1",
		"email":          "someone-else@test.local",
	}), "donor@test.local")
	rr := serve("POST /v1/payments", h.RecordPayment, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordPayment_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate", service.ErrDuplicatePayment, http.StatusConflict},
		{"paused", service.ErrCampaignPaused, http.StatusConflict},
		{"missing campaign", service.ErrCampaignNotFound, http.StatusNotFound},
		{"bad amount", service.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"outcome unknown", fmt.Errorf("%w: campaign campaign:c1", service.ErrPartialFailure), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewDonationHandler(&mockPayments{
				recordPaymentFunc: func(context.Context, string, *model.CreatePaymentRequest) (*service.DonationReceipt, error) {
					return nil, tt.err
				},
			}, &mockLedger{})

			req := withCaller(makeJSONRequest(http.MethodPost, "/v1/payments", model.CreatePaymentRequest{
				CampaignID:    "campaign:c1",
				Amount:        "5.00",
				TransactionID: "pi_1",
			}), "donor@test.local")
			rr := serve("POST /v1/payments", h.RecordPayment, req)

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

// ============================================================================
// Intent, listings, refund, reverse, reconcile
// ============================================================================

func TestCreateIntent_ReturnsClientSecret(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{
		createIntentFunc: func(_ context.Context, price string) (*model.PaymentIntent, error) {
			assert.Equal(t, "75.50", price)
			return &model.PaymentIntent{ID: "pi_9", ClientSecret: "pi_9_secret"}, nil
		},
	}, &mockLedger{})

	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/payments/intent",
		model.PaymentIntentRequest{Price: "75.50"}), "donor@test.local")
	rr := serve("POST /v1/payments/intent", h.CreateIntent, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var intent model.PaymentIntent
	decodeData(t, rr.Body.Bytes(), &intent)
	assert.Equal(t, "pi_9_secret", intent.ClientSecret)
}

func TestCreateIntent_ProcessorDown(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{
		createIntentFunc: func(context.Context, string) (*model.PaymentIntent, error) {
			return nil, fmt.Errorf("%w: timeout", service.ErrPaymentProcessor)
		},
	}, &mockLedger{})

	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/payments/intent",
		model.PaymentIntentRequest{Price: "1"}), "donor@test.local")
	rr := serve("POST /v1/payments/intent", h.CreateIntent, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestListDonors_PassesCampaignID(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{
		donorsFunc: func(_ context.Context, id string) ([]*model.Payment, error) {
			assert.Equal(t, "c1", id)
			return []*model.Payment{{ID: "payment:a"}, {ID: "payment:b"}}, nil
		},
	})

	rr := serve("GET /v1/campaigns/{campaignId}/donors", h.ListDonors,
		makeJSONRequest(http.MethodGet, "/v1/campaigns/c1/donors", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var payments []*model.Payment
	decodeData(t, rr.Body.Bytes(), &payments)
	assert.Len(t, payments, 2)
}

func TestListMyDonations(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{
		donationsFunc: func(_ context.Context, email string) ([]*model.DonationView, error) {
			assert.Equal(t, "donor@test.local", email)
			return []*model.DonationView{{PaymentID: "payment:a", PetName: "Rex"}}, nil
		},
	})

	req := withCaller(makeJSONRequest(http.MethodGet, "/v1/me/donations", nil), "donor@test.local")
	rr := serve("GET /v1/me/donations", h.ListMine, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var views []*model.DonationView
	decodeData(t, rr.Body.Bytes(), &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Rex", views[0].PetName)
}

func TestRefund(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{
		refundFunc: func(_ context.Context, id string) (*model.Payment, error) {
			if id == "gone" {
				return nil, service.ErrPaymentNotFound
			}
			return &model.Payment{ID: "payment:" + id}, nil
		},
	})

	rr := serve("DELETE /v1/admin/payments/{paymentId}", h.Refund,
		makeJSONRequest(http.MethodDelete, "/v1/admin/payments/p1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve("DELETE /v1/admin/payments/{paymentId}", h.Refund,
		makeJSONRequest(http.MethodDelete, "/v1/admin/payments/gone", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReverseDonation_RejectPolicy(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{
		reverseFunc: func(_ context.Context, id, amount string) (*model.Campaign, error) {
			assert.Equal(t, "c1", id)
			assert.Equal(t, "50.00", amount)
			return nil, service.ErrNegativeTotal
		},
	})

	rr := serve("PATCH /v1/admin/campaigns/{campaignId}/reverse", h.ReverseDonation,
		makeJSONRequest(http.MethodPatch, "/v1/admin/campaigns/c1/reverse",
			model.ReverseDonationRequest{Amount: "50.00"}))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestReconcile_DryRunFlag(t *testing.T) {
	t.Parallel()

	var sawDryRun bool
	h := NewDonationHandler(&mockPayments{}, &mockLedger{
		reconcileFunc: func(_ context.Context, id string, dryRun bool) (*service.ReconcileResult, error) {
			sawDryRun = dryRun
			return &service.ReconcileResult{CampaignID: "campaign:" + id, Changed: true}, nil
		},
	})

	rr := serve("POST /v1/admin/campaigns/{campaignId}/reconcile", h.Reconcile,
		makeJSONRequest(http.MethodPost, "/v1/admin/campaigns/c1/reconcile?dry_run=true", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, sawDryRun)
}

func TestReconcile_StoreDown(t *testing.T) {
	t.Parallel()

	h := NewDonationHandler(&mockPayments{}, &mockLedger{
		reconcileFunc: func(context.Context, string, bool) (*service.ReconcileResult, error) {
			return nil, fmt.Errorf("%w: %w", service.ErrStoreUnavailable, errors.New("eof"))
		},
	})

	rr := serve("POST /v1/admin/campaigns/{campaignId}/reconcile", h.Reconcile,
		makeJSONRequest(http.MethodPost, "/v1/admin/campaigns/c1/reconcile", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
