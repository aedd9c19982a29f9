package model

import "time"

// AdoptionStatus is the lifecycle state of an adoption request
type AdoptionStatus string

const (
	AdoptionStatusRequested AdoptionStatus = "Requested"
	AdoptionStatusAdopted   AdoptionStatus = "Adopted"
)

// AdoptionRequest is an adopter's claim on a pet, pending the owner's
// acceptance. At most one exists per (email, pet_id).
type AdoptionRequest struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	PetID      string         `json:"pet_id"`
	PetName    string         `json:"pet_name"`
	PetImage   string         `json:"pet_image"`
	OwnerEmail string         `json:"owner_email"`
	Status     AdoptionStatus `json:"status"`
	CreatedOn  time.Time      `json:"created_on"`
}

// CreateAdoptionRequest is the body of POST /v1/adopts
type CreateAdoptionRequest struct {
	PetID   string `json:"pet_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Validate validates the request
func (r *CreateAdoptionRequest) Validate() []FieldError {
	var errors []FieldError
	if r.PetID == "" {
		errors = append(errors, FieldError{Field: "pet_id", Message: "pet_id is required"})
	}
	errors = requireText(errors, "name", r.Name, MaxNameLength)
	errors = requireText(errors, "phone", r.Phone, 32)
	errors = requireText(errors, "address", r.Address, MaxShortDescriptionLength)
	return errors
}
