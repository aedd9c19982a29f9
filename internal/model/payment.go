package model

import "time"

// Payment is one successful charge credited to a campaign. A live payment
// has been added into its campaign's total exactly once; a refund deletes it.
type Payment struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CampaignID   string    `json:"campaign_id"`
	Amount       Amount    `json:"amount"`
	ProcessorRef string    `json:"processor_ref"`
	CreatedOn    time.Time `json:"created_on"`
}

// DonationView is a donor's payment joined with its campaign's display fields
type DonationView struct {
	PaymentID     string `json:"payment_id"`
	CampaignID    string `json:"campaign_id"`
	PetName       string `json:"pet_name"`
	PetImage      string `json:"pet_image"`
	DonatedAmount Amount `json:"donated_amount"`
}

// CreatePaymentRequest is the body of POST /v1/payments, sent after the
// client confirmed the charge with the processor.
type CreatePaymentRequest struct {
	CampaignID    string `json:"campaign_id"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

// Validate validates the request
func (r *CreatePaymentRequest) Validate() []FieldError {
	var errors []FieldError
	if r.CampaignID == "" {
		errors = append(errors, FieldError{Field: "campaign_id", Message: "campaign_id is required"})
	}
	if r.Amount == "" {
		errors = append(errors, FieldError{Field: "amount", Message: "amount is required"})
	}
	if r.TransactionID == "" {
		errors = append(errors, FieldError{Field: "transaction_id", Message: "transaction_id is required"})
	}
	return errors
}

// PaymentIntentRequest is the body of POST /v1/payments/intent
type PaymentIntentRequest struct {
	Price string `json:"price"`
}

// PaymentIntent is the processor's answer, handed to the browser
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// ReverseDonationRequest is the body of PATCH /v1/campaigns/{id}/reverse
type ReverseDonationRequest struct {
	Amount string `json:"amount"`
}
