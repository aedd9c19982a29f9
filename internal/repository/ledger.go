package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// paymentFields maps the stored record link onto Payment.CampaignID
var paymentFields = map[string]string{"campaign": "campaign_id"}

// casUpdate is the guarded campaign write shared by every ledger transaction.
// It binds $updated, which is empty when the version moved on.
const casUpdate = `LET $updated = UPDATE type::record($campaign_id)
	SET donated_amount = $total, version = version + 1
	WHERE version = $expected
	RETURN AFTER`

// LedgerRepository owns every write to a campaign's donated_amount and
// version. Each method is a single transaction whose campaign write is
// conditional on the version the caller read; a lost race fails with
// database.ErrConflict and nothing is written.
type LedgerRepository struct {
	db database.Database
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db database.Database) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetCampaign retrieves a campaign. Returns nil if not found.
func (r *LedgerRepository) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return getCampaign(ctx, r.db, id)
}

// GetPayment retrieves a payment. Returns nil if not found.
func (r *LedgerRepository) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	p, err := decodeOne[model.Payment](result, paymentFields)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// InsertDonation writes the new campaign total and creates the payment.
// A reused processor reference fails with database.ErrDuplicate.
func (r *LedgerRepository) InsertDonation(ctx context.Context, w model.LedgerWrite, p *model.Payment) (*model.Campaign, *model.Payment, error) {
	tb := database.NewTxBuilder()
	addCAS(tb, w)
	tb.Add(`LET $payment = CREATE payment CONTENT {
			email: $email,
			campaign: type::record($campaign_id),
			amount: $amount,
			processor_ref: $processor_ref,
			created_on: time::now()
		} RETURN AFTER`,
		map[string]interface{}{
			"email":         p.Email,
			"campaign_id":   w.CampaignID,
			"amount":        p.Amount.String(),
			"processor_ref": p.ProcessorRef,
		})
	tb.AddRaw(`RETURN { campaign: $updated[0], payment: $payment[0] }`)

	results, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		return nil, nil, err
	}

	last, err := database.LastResult(results)
	if err != nil {
		return nil, nil, err
	}
	out, ok := last.(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%w: unexpected donation result", database.ErrQuery)
	}

	campaign, err := decodeOne[model.Campaign](out["campaign"], nil)
	if err != nil {
		return nil, nil, err
	}
	payment, err := decodeOne[model.Payment](out["payment"], paymentFields)
	if err != nil {
		return nil, nil, err
	}
	return campaign, payment, nil
}

// WriteTotal replaces the campaign total without touching payments
func (r *LedgerRepository) WriteTotal(ctx context.Context, w model.LedgerWrite) (*model.Campaign, error) {
	tb := database.NewTxBuilder()
	addCAS(tb, w)
	tb.AddRaw(`RETURN $updated[0]`)

	results, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		return nil, err
	}

	last, err := database.LastResult(results)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Campaign](last, nil)
}

// DeletePayment removes a payment and, when w is non-nil, writes the reduced
// campaign total in the same transaction. A payment that is already gone
// fails with database.ErrConflict.
func (r *LedgerRepository) DeletePayment(ctx context.Context, paymentID string, w *model.LedgerWrite) error {
	tb := database.NewTxBuilder()
	tb.Add(`LET $deleted = DELETE type::record($id) RETURN BEFORE`, map[string]interface{}{"id": paymentID})
	tb.AddRaw(database.ThrowIfEmpty("$deleted"))
	if w != nil {
		addCAS(tb, *w)
	}

	_, err := database.ExecuteTransaction(ctx, r.db, tb)
	return err
}

// ListPaymentsByCampaign returns a campaign's payments in insertion order
func (r *LedgerRepository) ListPaymentsByCampaign(ctx context.Context, campaignID string) ([]*model.Payment, error) {
	query := `SELECT * FROM payment WHERE campaign = type::record($campaign_id) ORDER BY created_on ASC, id ASC`
	vars := map[string]interface{}{"campaign_id": campaignID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Payment](result, paymentFields)
}

// ListDonationsByEmail joins a donor's payments with their campaigns.
// Payments whose campaign no longer exists are left out.
func (r *LedgerRepository) ListDonationsByEmail(ctx context.Context, email string) ([]*model.DonationView, error) {
	query := `
		SELECT
			id AS payment_id,
			campaign AS campaign_id,
			campaign.pet_name AS pet_name,
			campaign.pet_image AS pet_image,
			amount AS donated_amount,
			created_on
		FROM payment
		WHERE email = $email AND campaign.id != NONE
		ORDER BY created_on ASC
	`
	vars := map[string]interface{}{"email": email}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.DonationView](result, nil)
}

// ListCampaignIDs returns the id of every campaign
func (r *LedgerRepository) ListCampaignIDs(ctx context.Context) ([]string, error) {
	result, err := r.db.Query(ctx, `SELECT VALUE id FROM campaign`, nil)
	if err != nil {
		return nil, err
	}

	rows := firstStatementRows(result)
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, recordIDString(row))
	}
	return ids, nil
}

func addCAS(tb *database.TxBuilder, w model.LedgerWrite) {
	tb.Add(casUpdate, map[string]interface{}{
		"campaign_id": w.CampaignID,
		"total":       w.NewTotal.String(),
		"expected":    w.ExpectedVersion,
	})
	tb.AddRaw(database.ThrowIfEmpty("$updated"))
}
