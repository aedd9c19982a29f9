package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// LedgerStore defines the storage the ledger needs. Every write method is
// one transaction guarded on model.LedgerWrite.ExpectedVersion and fails
// with database.ErrConflict when the campaign moved on.
type LedgerStore interface {
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	GetPayment(ctx context.Context, id string) (*model.Payment, error)
	InsertDonation(ctx context.Context, w model.LedgerWrite, p *model.Payment) (*model.Campaign, *model.Payment, error)
	WriteTotal(ctx context.Context, w model.LedgerWrite) (*model.Campaign, error)
	DeletePayment(ctx context.Context, paymentID string, w *model.LedgerWrite) error
	ListPaymentsByCampaign(ctx context.Context, campaignID string) ([]*model.Payment, error)
	ListDonationsByEmail(ctx context.Context, email string) ([]*model.DonationView, error)
	ListCampaignIDs(ctx context.Context) ([]string, error)
}

// ReversalPolicy decides what ReverseDonation does when the literal
// subtraction would leave a negative total.
type ReversalPolicy string

const (
	// ReversalReject refuses the reversal and writes nothing
	ReversalReject ReversalPolicy = "reject"
	// ReversalClamp writes zero instead of a negative total
	ReversalClamp ReversalPolicy = "clamp"
)

// ParseReversalPolicy parses a configured policy name
func ParseReversalPolicy(s string) (ReversalPolicy, error) {
	switch p := ReversalPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ReversalReject, ReversalClamp:
		return p, nil
	case "":
		return ReversalReject, nil
	default:
		return "", fmt.Errorf("unknown reversal policy %q (want reject or clamp)", s)
	}
}

const (
	defaultLedgerRetries = 16
	defaultLedgerBackoff = 5 * time.Millisecond
	maxLedgerBackoff     = 250 * time.Millisecond
)

// LedgerService keeps each campaign's donated_amount equal to the sum of its
// live payments. Writes read the campaign, compute the new total, and commit
// it together with the payment change in one transaction that only applies
// if the campaign version is unchanged; a lost race re-reads and retries.
type LedgerService struct {
	store        LedgerStore
	queue        *ReconcileQueue
	policy       ReversalPolicy
	maxRetries   int
	backoff      time.Duration
	acceptPaused bool
	events       EventPublisher
	logger       *slog.Logger
}

// LedgerConfig holds configuration for the ledger
type LedgerConfig struct {
	Store          LedgerStore
	Queue          *ReconcileQueue // receives campaigns after an unknown outcome
	ReversalPolicy ReversalPolicy  // default reject
	MaxRetries     int             // default 16
	Backoff        time.Duration   // base retry delay, default 5ms
	AcceptPaused   bool            // record donations to paused campaigns
	Events         EventPublisher  // notified after each committed total change
	Logger         *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(cfg LedgerConfig) *LedgerService {
	if cfg.ReversalPolicy == "" {
		cfg.ReversalPolicy = ReversalReject
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultLedgerRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultLedgerBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Queue == nil {
		cfg.Queue = NewReconcileQueue(0)
	}
	if cfg.Events == nil {
		cfg.Events = noopPublisher{}
	}

	return &LedgerService{
		store:        cfg.Store,
		queue:        cfg.Queue,
		policy:       cfg.ReversalPolicy,
		maxRetries:   cfg.MaxRetries,
		backoff:      cfg.Backoff,
		acceptPaused: cfg.AcceptPaused,
		events:       cfg.Events,
		logger:       cfg.Logger,
	}
}

// Queue returns the reconciliation queue fed by partial failures
func (s *LedgerService) Queue() *ReconcileQueue {
	return s.queue
}

// Policy returns the active reversal policy
func (s *LedgerService) Policy() ReversalPolicy {
	return s.policy
}

// DonationReceipt is the outcome of a recorded donation
type DonationReceipt struct {
	Payment  *model.Payment  `json:"payment"`
	Campaign *model.Campaign `json:"campaign"`
}

// RecordDonation creates a payment and adds its amount to the campaign total
// atomically. A processor reference can be recorded only once.
func (s *LedgerService) RecordDonation(ctx context.Context, campaignID, donorEmail, amount, processorRef string) (*DonationReceipt, error) {
	id, err := model.NormalizeRecordID(model.TableCampaign, campaignID)
	if err != nil {
		return nil, ErrInvalidID
	}
	value, err := parsePositiveAmount(amount)
	if err != nil {
		return nil, err
	}
	if !model.IsValidEmail(donorEmail) {
		return nil, ErrInvalidEmail
	}
	processorRef = strings.TrimSpace(processorRef)
	if processorRef == "" {
		return nil, ErrProcessorRefRequired
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		campaign, err := s.loadCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		if campaign.Pause && !s.acceptPaused {
			return nil, ErrCampaignPaused
		}

		write := model.LedgerWrite{
			CampaignID:      campaign.ID,
			ExpectedVersion: campaign.Version,
			NewTotal:        campaign.DonatedAmount.Add(value),
		}
		updated, payment, err := s.store.InsertDonation(ctx, write, &model.Payment{
			Email:        donorEmail,
			CampaignID:   campaign.ID,
			Amount:       value,
			ProcessorRef: processorRef,
		})
		switch {
		case err == nil:
			s.events.Publish(NewTotalEvent(EventDonation, updated.ID, updated.DonatedAmount, value))
			return &DonationReceipt{Payment: payment, Campaign: updated}, nil
		case errors.Is(err, database.ErrConflict):
			if err := s.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		case errors.Is(err, database.ErrDuplicate):
			return nil, ErrDuplicatePayment
		case errors.Is(err, database.ErrConnection):
			return nil, s.partial(ctx, id, processorRef, err)
		default:
			return nil, storeError(err)
		}
	}

	return nil, ErrLedgerContention
}

// ReverseDonation subtracts amount from the campaign total. It does not look
// up or delete any payment: the caller supplies the delta. What happens to a
// negative result is decided by the ReversalPolicy.
func (s *LedgerService) ReverseDonation(ctx context.Context, campaignID, amount string) (*model.Campaign, error) {
	id, err := model.NormalizeRecordID(model.TableCampaign, campaignID)
	if err != nil {
		return nil, ErrInvalidID
	}
	value, err := parsePositiveAmount(amount)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		campaign, err := s.loadCampaign(ctx, id)
		if err != nil {
			return nil, err
		}

		total := campaign.DonatedAmount.Sub(value)
		if total.IsNegative() {
			if s.policy == ReversalReject {
				return nil, ErrNegativeTotal
			}
			total = model.ZeroAmount
		}

		updated, err := s.store.WriteTotal(ctx, model.LedgerWrite{
			CampaignID:      campaign.ID,
			ExpectedVersion: campaign.Version,
			NewTotal:        total,
		})
		switch {
		case err == nil:
			s.events.Publish(NewTotalEvent(EventReversal, updated.ID, updated.DonatedAmount, total.Sub(campaign.DonatedAmount)))
			return updated, nil
		case errors.Is(err, database.ErrConflict):
			if err := s.wait(ctx, attempt); err != nil {
				return nil, err
			}
		case errors.Is(err, database.ErrConnection):
			return nil, s.partial(ctx, id, "", err)
		default:
			return nil, storeError(err)
		}
	}

	return nil, ErrLedgerContention
}

// Refund deletes a payment and subtracts its own amount from its campaign in
// one transaction. A payment whose campaign is gone is still deleted.
func (s *LedgerService) Refund(ctx context.Context, paymentID string) (*model.Payment, error) {
	id, err := model.NormalizeRecordID(model.TablePayment, paymentID)
	if err != nil {
		return nil, ErrInvalidID
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		payment, err := s.store.GetPayment(ctx, id)
		if err != nil {
			return nil, storeError(err)
		}
		if payment == nil {
			return nil, ErrPaymentNotFound
		}

		campaign, err := s.store.GetCampaign(ctx, payment.CampaignID)
		if err != nil {
			return nil, storeError(err)
		}

		var write *model.LedgerWrite
		if campaign != nil {
			total := campaign.DonatedAmount.Sub(payment.Amount)
			if total.IsNegative() {
				s.logger.Warn("refund exceeds campaign total, clamping at zero",
					"campaign_id", campaign.ID,
					"payment_id", payment.ID,
					"donated_amount", campaign.DonatedAmount.String(),
					"amount", payment.Amount.String(),
				)
				total = model.ZeroAmount
			}
			write = &model.LedgerWrite{
				CampaignID:      campaign.ID,
				ExpectedVersion: campaign.Version,
				NewTotal:        total,
			}
		}

		err = s.store.DeletePayment(ctx, payment.ID, write)
		switch {
		case err == nil:
			if write != nil {
				s.events.Publish(NewTotalEvent(EventRefund, write.CampaignID, write.NewTotal, write.NewTotal.Sub(campaign.DonatedAmount)))
			}
			return payment, nil
		case errors.Is(err, database.ErrConflict):
			// Either the campaign moved on or the payment was refunded
			// concurrently; the next read tells which.
			if err := s.wait(ctx, attempt); err != nil {
				return nil, err
			}
		case errors.Is(err, database.ErrConnection):
			return nil, s.partial(ctx, payment.CampaignID, payment.ProcessorRef, err)
		default:
			return nil, storeError(err)
		}
	}

	return nil, ErrLedgerContention
}

// ListDonors returns the payments of a campaign in insertion order
func (s *LedgerService) ListDonors(ctx context.Context, campaignID string) ([]*model.Payment, error) {
	id, err := model.NormalizeRecordID(model.TableCampaign, campaignID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if _, err := s.loadCampaign(ctx, id); err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByCampaign(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return payments, nil
}

// ListDonationsForUser returns a donor's payments joined with their
// campaigns. Payments of deleted campaigns are left out.
func (s *LedgerService) ListDonationsForUser(ctx context.Context, donorEmail string) ([]*model.DonationView, error) {
	if !model.IsValidEmail(donorEmail) {
		return nil, ErrInvalidEmail
	}

	views, err := s.store.ListDonationsByEmail(ctx, donorEmail)
	if err != nil {
		return nil, storeError(err)
	}
	return views, nil
}

// ReconcileResult reports the outcome of reconciling one campaign
type ReconcileResult struct {
	CampaignID string       `json:"campaign_id"`
	Previous   model.Amount `json:"previous"`
	Current    model.Amount `json:"current"`
	Payments   int          `json:"payments"`
	Changed    bool         `json:"changed"`
}

// Reconcile recomputes a campaign total from its live payments and writes
// it when it differs. With dryRun the difference is only reported.
// A literal ReverseDonation is undone by this, since it moves the total
// without touching payments.
func (s *LedgerService) Reconcile(ctx context.Context, campaignID string, dryRun bool) (*ReconcileResult, error) {
	id, err := model.NormalizeRecordID(model.TableCampaign, campaignID)
	if err != nil {
		return nil, ErrInvalidID
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		campaign, err := s.loadCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		payments, err := s.store.ListPaymentsByCampaign(ctx, id)
		if err != nil {
			return nil, storeError(err)
		}

		sum := model.ZeroAmount
		for _, p := range payments {
			sum = sum.Add(p.Amount)
		}

		result := &ReconcileResult{
			CampaignID: campaign.ID,
			Previous:   campaign.DonatedAmount,
			Current:    campaign.DonatedAmount,
			Payments:   len(payments),
		}
		if sum.Equal(campaign.DonatedAmount) {
			return result, nil
		}
		if dryRun {
			result.Current = sum
			result.Changed = true
			return result, nil
		}

		_, err = s.store.WriteTotal(ctx, model.LedgerWrite{
			CampaignID:      campaign.ID,
			ExpectedVersion: campaign.Version,
			NewTotal:        sum,
		})
		switch {
		case err == nil:
			result.Current = sum
			result.Changed = true
			s.events.Publish(NewTotalEvent(EventReconciled, campaign.ID, sum, sum.Sub(campaign.DonatedAmount)))
			s.logger.Warn("reconciled campaign total",
				"campaign_id", campaign.ID,
				"old", campaign.DonatedAmount.String(),
				"new", sum.String(),
				"payments", len(payments),
			)
			return result, nil
		case errors.Is(err, database.ErrConflict):
			if err := s.wait(ctx, attempt); err != nil {
				return nil, err
			}
		default:
			return nil, storeError(err)
		}
	}

	return nil, ErrLedgerContention
}

// ReconcileAll reconciles every campaign and returns those whose total
// differed. Failures are collected; the sweep does not stop at the first.
func (s *LedgerService) ReconcileAll(ctx context.Context, dryRun bool) ([]*ReconcileResult, error) {
	ids, err := s.store.ListCampaignIDs(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	var changed []*ReconcileResult
	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		result, err := s.Reconcile(ctx, id, dryRun)
		if err != nil {
			if errors.Is(err, ErrCampaignNotFound) {
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if result.Changed {
			changed = append(changed, result)
		}
	}

	return changed, errors.Join(errs...)
}

// loadCampaign reads a campaign, mapping absence to ErrCampaignNotFound
func (s *LedgerService) loadCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	campaign, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// partial logs a write whose outcome is unknown and queues its campaign
func (s *LedgerService) partial(ctx context.Context, campaignID, processorRef string, cause error) error {
	queued := s.queue.Push(campaignID)
	s.logger.ErrorContext(ctx, "ledger write outcome unknown",
		"campaign_id", campaignID,
		"processor_ref", processorRef,
		"queued", queued,
		"error", cause,
	)
	return fmt.Errorf("%w: campaign %s", ErrPartialFailure, campaignID)
}

// wait sleeps before retry attempt+1 with exponential backoff and full
// jitter. A done context ends the retry loop; nothing was written.
func (s *LedgerService) wait(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrLedgerContention, err)
	}
	ceiling := s.backoff << min(attempt, 6)
	if ceiling > maxLedgerBackoff {
		ceiling = maxLedgerBackoff
	}
	delay := time.Duration(rand.Int64N(int64(ceiling) + 1))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrLedgerContention, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func parsePositiveAmount(raw string) (model.Amount, error) {
	value, err := model.ParseAmount(raw)
	if err != nil || !value.IsPositive() {
		return model.Amount{}, ErrInvalidAmount
	}
	return value, nil
}
