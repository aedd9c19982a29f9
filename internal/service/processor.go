package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// PaymentProcessor creates and inspects card charges with an external
// processor.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount model.Amount) (*model.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*ProcessorCharge, error)
}

// ProcessorCharge is the processor's view of a payment intent
type ProcessorCharge struct {
	ID        string
	Amount    model.Amount
	Currency  string
	Succeeded bool
}

// StripeProcessor implements PaymentProcessor with Stripe payment intents
type StripeProcessor struct {
	api      *client.API
	currency string
	methods  []string
}

// StripeConfig holds Stripe settings
type StripeConfig struct {
	SecretKey      string
	Currency       string   // default usd
	PaymentMethods []string // default card
	Backend        stripe.Backend
}

// NewStripeProcessor creates a processor bound to one secret key
func NewStripeProcessor(cfg StripeConfig) *StripeProcessor {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	if len(cfg.PaymentMethods) == 0 {
		cfg.PaymentMethods = []string{"card"}
	}

	var backends *stripe.Backends
	if cfg.Backend != nil {
		backends = &stripe.Backends{API: cfg.Backend, Connect: cfg.Backend, Uploads: cfg.Backend}
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, backends)

	return &StripeProcessor{
		api:      api,
		currency: strings.ToLower(cfg.Currency),
		methods:  cfg.PaymentMethods,
	}
}

// CreateIntent opens a payment intent for amount and returns its client secret
func (p *StripeProcessor) CreateIntent(ctx context.Context, amount model.Amount) (*model.PaymentIntent, error) {
	cents, ok := amount.MinorUnits()
	if !ok {
		return nil, ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(cents),
		Currency:           stripe.String(p.currency),
		PaymentMethodTypes: stripe.StringSlice(p.methods),
	}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, processorError(err)
	}

	return &model.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// GetIntent fetches a payment intent by id
func (p *StripeProcessor) GetIntent(ctx context.Context, id string) (*ProcessorCharge, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, processorError(err)
	}

	return &ProcessorCharge{
		ID:        intent.ID,
		Amount:    model.AmountFromMinorUnits(intent.Amount),
		Currency:  string(intent.Currency),
		Succeeded: intent.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

// processorError keeps the processor's message but classifies the error as
// upstream. An unknown intent id cannot match the recorded payment.
func processorError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return ErrPaymentMismatch
		}
		return fmt.Errorf("%w: %s", ErrPaymentProcessor, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %w", ErrPaymentProcessor, err)
}
