package model

import "time"

// Campaign is a fundraising effort for one pet. DonatedAmount is written only
// by the donation ledger; Version is bumped by every ledger write and guards
// those writes against lost updates.
type Campaign struct {
	ID               string    `json:"id"`
	PetName          string    `json:"pet_name"`
	PetImage         string    `json:"pet_image"`
	MaxDonation      Amount    `json:"max_donation"`
	LastDate         string    `json:"last_date"`
	ShortDescription string    `json:"short_description"`
	LongDescription  string    `json:"long_description"`
	AdderEmail       string    `json:"adder_email"`
	Pause            bool      `json:"pause"`
	DonatedAmount    Amount    `json:"donated_amount"`
	Version          int64     `json:"version"`
	AddedTime        time.Time `json:"added_time"`
}

// CreateCampaignRequest is the body of POST /v1/campaigns
type CreateCampaignRequest struct {
	PetName          string `json:"pet_name"`
	PetImage         string `json:"pet_image"`
	MaxDonation      string `json:"max_donation"`
	LastDate         string `json:"last_date"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
}

// Validate validates the create request
func (r *CreateCampaignRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireText(errors, "pet_name", r.PetName, MaxNameLength)
	errors = requireText(errors, "pet_image", r.PetImage, MaxURLLength)
	errors = requireText(errors, "last_date", r.LastDate, 64)
	errors = requireText(errors, "short_description", r.ShortDescription, MaxShortDescriptionLength)
	if len(r.LongDescription) > MaxLongDescriptionLength {
		errors = append(errors, FieldError{Field: "long_description", Message: "long_description is too long"})
	}
	errors = validateMaxDonation(errors, r.MaxDonation)
	return errors
}

// UpdateCampaignRequest carries a partial update. The donated total is not
// part of it.
type UpdateCampaignRequest struct {
	PetName          *string `json:"pet_name,omitempty"`
	PetImage         *string `json:"pet_image,omitempty"`
	MaxDonation      *string `json:"max_donation,omitempty"`
	LastDate         *string `json:"last_date,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	LongDescription  *string `json:"long_description,omitempty"`
}

// Validate validates the update request
func (r *UpdateCampaignRequest) Validate() []FieldError {
	var errors []FieldError
	errors = optionalText(errors, "pet_name", r.PetName, MaxNameLength)
	errors = optionalText(errors, "pet_image", r.PetImage, MaxURLLength)
	errors = optionalText(errors, "last_date", r.LastDate, 64)
	errors = optionalText(errors, "short_description", r.ShortDescription, MaxShortDescriptionLength)
	if r.LongDescription != nil && len(*r.LongDescription) > MaxLongDescriptionLength {
		errors = append(errors, FieldError{Field: "long_description", Message: "long_description is too long"})
	}
	if r.MaxDonation != nil {
		errors = validateMaxDonation(errors, *r.MaxDonation)
	}
	if r.PetName == nil && r.PetImage == nil && r.MaxDonation == nil && r.LastDate == nil &&
		r.ShortDescription == nil && r.LongDescription == nil {
		errors = append(errors, FieldError{Field: "body", Message: "at least one field must be provided"})
	}
	return errors
}

func validateMaxDonation(errors []FieldError, raw string) []FieldError {
	amount, err := ParseAmount(raw)
	if err != nil {
		return append(errors, FieldError{Field: "max_donation", Message: err.Error()})
	}
	if !amount.IsPositive() {
		return append(errors, FieldError{Field: "max_donation", Message: "max_donation must be positive"})
	}
	return errors
}

// LedgerWrite is a compare-and-swap of a campaign total. It applies only
// while the stored version still equals ExpectedVersion, and bumps it.
type LedgerWrite struct {
	CampaignID      string
	ExpectedVersion int64
	NewTotal        Amount
}
