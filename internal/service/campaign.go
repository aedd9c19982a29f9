package service

import (
	"context"
	"strings"

	"github.com/forgo/petzadopt/internal/model"
)

// CampaignRepository defines the interface for campaign storage. The donated
// total is not writable through it; see LedgerStore.
type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, page model.Page) ([]*model.Campaign, error)
	ListByAdder(ctx context.Context, email string) ([]*model.Campaign, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Campaign, error)
	TogglePause(ctx context.Context, id string) (*model.Campaign, error)
	Delete(ctx context.Context, id string) error
}

// CampaignService handles donation campaigns
type CampaignService struct {
	repo   CampaignRepository
	admins AdminChecker
}

// CampaignServiceConfig holds configuration for the campaign service
type CampaignServiceConfig struct {
	Repo   CampaignRepository
	Admins AdminChecker
}

// NewCampaignService creates a new campaign service
func NewCampaignService(cfg CampaignServiceConfig) *CampaignService {
	return &CampaignService{
		repo:   cfg.Repo,
		admins: cfg.Admins,
	}
}

// List returns a page of campaigns, newest first
func (s *CampaignService) List(ctx context.Context, page model.Page) ([]*model.Campaign, error) {
	if page.Limit <= 0 {
		page = model.NewPage(1, 0)
	}
	campaigns, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, storeError(err)
	}
	return campaigns, nil
}

// Get returns one campaign
func (s *CampaignService) Get(ctx context.Context, id string) (*model.Campaign, error) {
	campaignID, err := model.NormalizeRecordID(model.TableCampaign, id)
	if err != nil {
		return nil, ErrInvalidID
	}

	campaign, err := s.repo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, storeError(err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// ListByAdder returns the campaigns started by email
func (s *CampaignService) ListByAdder(ctx context.Context, email string) ([]*model.Campaign, error) {
	if !model.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	campaigns, err := s.repo.ListByAdder(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	return campaigns, nil
}

// Create starts a campaign with a zero total on behalf of callerEmail
func (s *CampaignService) Create(ctx context.Context, callerEmail string, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	maxDonation, err := model.ParseAmount(req.MaxDonation)
	if err != nil || !maxDonation.IsPositive() {
		return nil, ErrInvalidAmount
	}

	campaign := &model.Campaign{
		PetName:          strings.TrimSpace(req.PetName),
		PetImage:         strings.TrimSpace(req.PetImage),
		MaxDonation:      maxDonation,
		LastDate:         strings.TrimSpace(req.LastDate),
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		AdderEmail:       callerEmail,
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, storeError(err)
	}
	return campaign, nil
}

// Update changes the descriptive fields of a campaign. Owner or admin.
func (s *CampaignService) Update(ctx context.Context, callerEmail, id string, req *model.UpdateCampaignRequest) (*model.Campaign, error) {
	campaign, err := s.authorize(ctx, callerEmail, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setString(updates, "pet_name", req.PetName)
	setString(updates, "pet_image", req.PetImage)
	setString(updates, "last_date", req.LastDate)
	setString(updates, "short_description", req.ShortDescription)
	setString(updates, "long_description", req.LongDescription)
	if req.MaxDonation != nil {
		maxDonation, err := model.ParseAmount(*req.MaxDonation)
		if err != nil || !maxDonation.IsPositive() {
			return nil, ErrInvalidAmount
		}
		updates["max_donation"] = maxDonation.String()
	}
	if len(updates) == 0 {
		return campaign, nil
	}

	updated, err := s.repo.Update(ctx, campaign.ID, updates)
	if err != nil {
		return nil, storeError(err)
	}
	if updated == nil {
		return nil, ErrCampaignNotFound
	}
	return updated, nil
}

// TogglePause flips the paused flag in one statement. Owner or admin.
func (s *CampaignService) TogglePause(ctx context.Context, callerEmail, id string) (*model.Campaign, error) {
	campaign, err := s.authorize(ctx, callerEmail, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.TogglePause(ctx, campaign.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if updated == nil {
		return nil, ErrCampaignNotFound
	}
	return updated, nil
}

// Delete removes a campaign. Its payments stay and drop out of donor
// histories. Owner or admin.
func (s *CampaignService) Delete(ctx context.Context, callerEmail, id string) error {
	campaign, err := s.authorize(ctx, callerEmail, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, campaign.ID); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *CampaignService) authorize(ctx context.Context, callerEmail, id string) (*model.Campaign, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(ctx, s.admins, callerEmail, campaign.AdderEmail); err != nil {
		return nil, err
	}
	return campaign, nil
}
