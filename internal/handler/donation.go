package handler

import (
	"context"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

// PaymentRecorder creates processor intents and records settled charges
type PaymentRecorder interface {
	CreateIntent(ctx context.Context, price string) (*model.PaymentIntent, error)
	RecordPayment(ctx context.Context, donorEmail string, req *model.CreatePaymentRequest) (*service.DonationReceipt, error)
}

// DonationLedger is the ledger surface exposed over HTTP
type DonationLedger interface {
	ReverseDonation(ctx context.Context, campaignID, amount string) (*model.Campaign, error)
	Refund(ctx context.Context, paymentID string) (*model.Payment, error)
	ListDonors(ctx context.Context, campaignID string) ([]*model.Payment, error)
	ListDonationsForUser(ctx context.Context, donorEmail string) ([]*model.DonationView, error)
	Reconcile(ctx context.Context, campaignID string, dryRun bool) (*service.ReconcileResult, error)
}

// DonationHandler handles payment and ledger endpoints
type DonationHandler struct {
	payments PaymentRecorder
	ledger   DonationLedger
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(payments PaymentRecorder, ledger DonationLedger) *DonationHandler {
	return &DonationHandler{payments: payments, ledger: ledger}
}

// CreateIntent handles POST /v1/payments/intent
func (h *DonationHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}

	var req model.PaymentIntentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	intent, err := h.payments.CreateIntent(r.Context(), req.Price)
	if err != nil {
		writeServiceError(w, r, err, "create payment intent")
		return
	}

	WriteData(w, http.StatusCreated, intent, nil)
}

// RecordPayment handles POST /v1/payments - credit a settled charge to its
// campaign. The donor is always the caller.
func (h *DonationHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.CreatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	receipt, err := h.payments.RecordPayment(r.Context(), email, &req)
	if err != nil {
		writeServiceError(w, r, err, "record payment")
		return
	}

	WriteData(w, http.StatusCreated, receipt, map[string]string{
		"campaign": "/v1/campaigns/" + receipt.Campaign.ID,
	})
}

// ListDonors handles GET /v1/campaigns/{campaignId}/donors
func (h *DonationHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	payments, err := h.ledger.ListDonors(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "list donors")
		return
	}

	WriteCollection(w, http.StatusOK, payments, nil, nil)
}

// ListMine handles GET /v1/me/donations
func (h *DonationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	donations, err := h.ledger.ListDonationsForUser(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "list my donations")
		return
	}

	WriteCollection(w, http.StatusOK, donations, nil, nil)
}

// Refund handles DELETE /v1/admin/payments/{paymentId} - delete a payment
// and take its amount back out of the campaign total in one write.
func (h *DonationHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	payment, err := h.ledger.Refund(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "refund payment")
		return
	}

	WriteData(w, http.StatusOK, payment, nil)
}

// ReverseDonation handles PATCH /v1/admin/campaigns/{campaignId}/reverse.
// It subtracts the supplied amount from the total without touching payments.
func (h *DonationHandler) ReverseDonation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	var req model.ReverseDonationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	campaign, err := h.ledger.ReverseDonation(r.Context(), id, req.Amount)
	if err != nil {
		writeServiceError(w, r, err, "reverse donation")
		return
	}

	WriteData(w, http.StatusOK, campaign, nil)
}

// Reconcile handles POST /v1/admin/campaigns/{campaignId}/reconcile.
// ?dry_run=true reports the drift without writing.
func (h *DonationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"

	result, err := h.ledger.Reconcile(r.Context(), id, dryRun)
	if err != nil {
		writeServiceError(w, r, err, "reconcile campaign")
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}
