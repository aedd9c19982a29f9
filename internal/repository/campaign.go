package repository

import (
	"context"
	"errors"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// CampaignRepository handles campaign listing data access.
// Writes to donated_amount and version go through LedgerRepository only.
type CampaignRepository struct {
	db database.Database
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db database.Database) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a campaign with a zero total
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	query := `
		CREATE campaign CONTENT {
			pet_name: $pet_name,
			pet_image: $pet_image,
			max_donation: $max_donation,
			last_date: $last_date,
			short_description: $short_description,
			long_description: $long_description,
			adder_email: $adder_email,
			pause: false,
			donated_amount: '0.00',
			version: 0,
			added_time: time::now()
		}
	`
	vars := map[string]interface{}{
		"pet_name":          c.PetName,
		"pet_image":         c.PetImage,
		"max_donation":      c.MaxDonation.String(),
		"last_date":         c.LastDate,
		"short_description": c.ShortDescription,
		"long_description":  c.LongDescription,
		"adder_email":       c.AdderEmail,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := decodeOne[model.Campaign](firstResult(result), nil)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// GetByID retrieves a campaign. Returns nil if not found.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	return getCampaign(ctx, r.db, id)
}

// List returns campaigns newest first
func (r *CampaignRepository) List(ctx context.Context, page model.Page) ([]*model.Campaign, error) {
	query := `SELECT * FROM campaign ORDER BY added_time DESC LIMIT $limit START $offset`
	vars := map[string]interface{}{
		"limit":  page.Limit,
		"offset": page.Offset,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Campaign](result, nil)
}

// ListByAdder returns campaigns created by email, newest first
func (r *CampaignRepository) ListByAdder(ctx context.Context, email string) ([]*model.Campaign, error) {
	query := `SELECT * FROM campaign WHERE adder_email = $email ORDER BY added_time DESC`
	vars := map[string]interface{}{"email": email}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Campaign](result, nil)
}

// Update merges descriptive fields into a campaign. Returns nil if not found.
func (r *CampaignRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Campaign, error) {
	query := `UPDATE type::record($id) MERGE $updates RETURN AFTER`
	vars := map[string]interface{}{
		"id":      id,
		"updates": updates,
	}

	return r.getOne(ctx, query, vars)
}

// TogglePause flips the pause flag in a single statement. Returns nil if not found.
func (r *CampaignRepository) TogglePause(ctx context.Context, id string) (*model.Campaign, error) {
	query := `UPDATE type::record($id) SET pause = !pause RETURN AFTER`
	vars := map[string]interface{}{"id": id}

	return r.getOne(ctx, query, vars)
}

// Delete removes a campaign. Its payments stay and drop out of donor views.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

func (r *CampaignRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Campaign, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeCampaign(result)
}

func getCampaign(ctx context.Context, db database.Database, id string) (*model.Campaign, error) {
	result, err := db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeCampaign(result)
}

func decodeCampaign(result interface{}) (*model.Campaign, error) {
	c, err := decodeOne[model.Campaign](result, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}
