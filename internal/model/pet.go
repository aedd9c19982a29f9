package model

import "time"

// Pet is a listing offered for adoption. Adopted pets are hidden from the
// public browse listing.
type Pet struct {
	ID               string    `json:"id"`
	PetName          string    `json:"pet_name"`
	PetAge           int       `json:"pet_age"`
	PetImage         string    `json:"pet_image"`
	Category         string    `json:"category"`
	PetLocation      string    `json:"pet_location"`
	ShortDescription string    `json:"short_description"`
	LongDescription  string    `json:"long_description"`
	AdderEmail       string    `json:"adder_email"`
	Adopted          bool      `json:"adopted"`
	AddedTime        time.Time `json:"added_time"`
}

// PetFilter narrows the public pet listing
type PetFilter struct {
	Category string
	Name     string // case-insensitive substring
	Page     Page
}

// Page is a skip/limit window over a sorted listing
type Page struct {
	Offset int
	Limit  int
}

// Pagination defaults
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NewPage clamps a 1-based page number and size into an offset window.
func NewPage(page, limit int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page <= 0 {
		page = 1
	}
	return Page{Offset: (page - 1) * limit, Limit: limit}
}

// CreatePetRequest is the body of POST /v1/pets
type CreatePetRequest struct {
	PetName          string `json:"pet_name"`
	PetAge           int    `json:"pet_age"`
	PetImage         string `json:"pet_image"`
	Category         string `json:"category"`
	PetLocation      string `json:"pet_location"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
}

// Validate validates the create request
func (r *CreatePetRequest) Validate() []FieldError {
	var errors []FieldError
	errors = requireText(errors, "pet_name", r.PetName, MaxNameLength)
	errors = requireText(errors, "category", r.Category, MaxNameLength)
	errors = requireText(errors, "pet_image", r.PetImage, MaxURLLength)
	errors = requireText(errors, "pet_location", r.PetLocation, MaxNameLength)
	errors = requireText(errors, "short_description", r.ShortDescription, MaxShortDescriptionLength)
	if len(r.LongDescription) > MaxLongDescriptionLength {
		errors = append(errors, FieldError{Field: "long_description", Message: "long_description is too long"})
	}
	if r.PetAge < 0 {
		errors = append(errors, FieldError{Field: "pet_age", Message: "pet_age cannot be negative"})
	}
	return errors
}

// UpdatePetRequest carries a partial update; nil fields are left as stored
type UpdatePetRequest struct {
	PetName          *string `json:"pet_name,omitempty"`
	PetAge           *int    `json:"pet_age,omitempty"`
	PetImage         *string `json:"pet_image,omitempty"`
	Category         *string `json:"category,omitempty"`
	PetLocation      *string `json:"pet_location,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	LongDescription  *string `json:"long_description,omitempty"`
}

// Validate validates the update request
func (r *UpdatePetRequest) Validate() []FieldError {
	var errors []FieldError
	errors = optionalText(errors, "pet_name", r.PetName, MaxNameLength)
	errors = optionalText(errors, "category", r.Category, MaxNameLength)
	errors = optionalText(errors, "pet_image", r.PetImage, MaxURLLength)
	errors = optionalText(errors, "pet_location", r.PetLocation, MaxNameLength)
	errors = optionalText(errors, "short_description", r.ShortDescription, MaxShortDescriptionLength)
	if r.LongDescription != nil && len(*r.LongDescription) > MaxLongDescriptionLength {
		errors = append(errors, FieldError{Field: "long_description", Message: "long_description is too long"})
	}
	if r.PetAge != nil && *r.PetAge < 0 {
		errors = append(errors, FieldError{Field: "pet_age", Message: "pet_age cannot be negative"})
	}
	if r.IsEmpty() {
		errors = append(errors, FieldError{Field: "body", Message: "at least one field must be provided"})
	}
	return errors
}

// IsEmpty reports whether the update changes nothing
func (r *UpdatePetRequest) IsEmpty() bool {
	return r.PetName == nil && r.PetAge == nil && r.PetImage == nil && r.Category == nil &&
		r.PetLocation == nil && r.ShortDescription == nil && r.LongDescription == nil
}
