package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/forgo/petzadopt/internal/model"
)

// DonationRecorder records and lists ledger payments
type DonationRecorder interface {
	RecordDonation(ctx context.Context, campaignID, donorEmail, amount, processorRef string) (*DonationReceipt, error)
}

// PaymentService fronts the payment processor for the donation flow: the
// browser obtains a client secret, confirms the card with the processor,
// then posts the processor's transaction id to be recorded.
type PaymentService struct {
	processor     PaymentProcessor
	ledger        DonationRecorder
	verifyCharges bool
	logger        *slog.Logger
}

// PaymentServiceConfig holds configuration for the payment service
type PaymentServiceConfig struct {
	Processor PaymentProcessor
	Ledger    DonationRecorder
	// VerifyCharges looks the transaction up with the processor before
	// recording it and rejects unsettled or mismatched charges.
	VerifyCharges bool
	Logger        *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PaymentService{
		processor:     cfg.Processor,
		ledger:        cfg.Ledger,
		verifyCharges: cfg.VerifyCharges,
		logger:        cfg.Logger,
	}
}

// CreateIntent opens a card payment for price
func (s *PaymentService) CreateIntent(ctx context.Context, price string) (*model.PaymentIntent, error) {
	amount, err := parsePositiveAmount(price)
	if err != nil {
		return nil, err
	}
	if s.processor == nil {
		return nil, fmt.Errorf("%w: no processor configured", ErrPaymentProcessor)
	}
	return s.processor.CreateIntent(ctx, amount)
}

// RecordPayment credits a confirmed charge to a campaign on behalf of donorEmail
func (s *PaymentService) RecordPayment(ctx context.Context, donorEmail string, req *model.CreatePaymentRequest) (*DonationReceipt, error) {
	ref := strings.TrimSpace(req.TransactionID)
	if ref == "" {
		return nil, ErrProcessorRefRequired
	}

	if s.verifyCharges {
		amount, err := parsePositiveAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		charge, err := s.processor.GetIntent(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !charge.Succeeded || !charge.Amount.Equal(amount) {
			s.logger.WarnContext(ctx, "payment does not match processor charge",
				"processor_ref", ref,
				"claimed", amount.String(),
				"charged", charge.Amount.String(),
				"succeeded", charge.Succeeded,
			)
			return nil, ErrPaymentMismatch
		}
	}

	return s.ledger.RecordDonation(ctx, req.CampaignID, donorEmail, req.Amount, ref)
}
