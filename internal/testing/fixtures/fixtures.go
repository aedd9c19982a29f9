// Package fixtures provides test data factories for database-backed tests.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories insert through the
// repositories and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	owner := f.CreateUser(t)
//	campaign := f.CreateCampaign(t, owner)
//	payment := f.Donate(t, campaign, "donor@test.local", "25.00")
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/repository"
)

// Factory creates test entities in the database
type Factory struct {
	db        database.Database
	users     *repository.UserRepository
	pets      *repository.PetRepository
	adoptions *repository.AdoptionRepository
	campaigns *repository.CampaignRepository
	ledger    *repository.LedgerRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		db:        db,
		users:     repository.NewUserRepository(db),
		pets:      repository.NewPetRepository(db),
		adoptions: repository.NewAdoptionRepository(db),
		campaigns: repository.NewCampaignRepository(db),
		ledger:    repository.NewLedgerRepository(db),
	}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx bounds a fixture write by the test's lifetime and ten seconds
func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email  string
	Name   string
	Role   model.UserRole
	Status model.UserStatus
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Email:  fmt.Sprintf("user_%s@test.local", randomID()),
		Name:   "Test User",
		Role:   model.UserRoleUser,
		Status: model.UserStatusNone,
	}
	for _, fn := range opts {
		fn(o)
	}

	name := o.Name
	user := &model.User{
		Email:  o.Email,
		Name:   &name,
		Role:   o.Role,
		Status: o.Status,
	}
	if err := f.users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	t.Helper()
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
	})
}

// ============================================================================
// Pet Fixtures
// ============================================================================

// PetOpts customizes pet creation
type PetOpts struct {
	Name     string
	Category string
	Age      int
}

// CreatePet creates a pet listed by owner
func (f *Factory) CreatePet(t *testing.T, owner *model.User, opts ...func(*PetOpts)) *model.Pet {
	t.Helper()

	o := &PetOpts{
		Name:     fmt.Sprintf("Pet %s", randomID()[:6]),
		Category: "dog",
		Age:      2,
	}
	for _, fn := range opts {
		fn(o)
	}

	pet := &model.Pet{
		PetName:          o.Name,
		PetAge:           o.Age,
		PetImage:         "https://img.test.local/pet.jpg",
		Category:         o.Category,
		PetLocation:      "Dhaka",
		ShortDescription: "friendly",
		LongDescription:  "a very friendly pet",
		AdderEmail:       owner.Email,
	}
	if err := f.pets.Create(ctx(t), pet); err != nil {
		t.Fatalf("fixtures: failed to create pet: %v", err)
	}
	return pet
}

// RequestAdoption files an adoption request by email for pet
func (f *Factory) RequestAdoption(t *testing.T, pet *model.Pet, email string) *model.AdoptionRequest {
	t.Helper()

	req := &model.AdoptionRequest{
		Email:      email,
		Name:       "Adopter",
		Phone:      "555-0100",
		Address:    "1 Test Street",
		PetID:      pet.ID,
		PetName:    pet.PetName,
		PetImage:   pet.PetImage,
		OwnerEmail: pet.AdderEmail,
	}
	if err := f.adoptions.Create(ctx(t), req); err != nil {
		t.Fatalf("fixtures: failed to create adoption request: %v", err)
	}
	return req
}

// ============================================================================
// Campaign Fixtures
// ============================================================================

// CampaignOpts customizes campaign creation
type CampaignOpts struct {
	PetName     string
	MaxDonation string
}

// CreateCampaign creates a campaign run by owner with a zero total
func (f *Factory) CreateCampaign(t *testing.T, owner *model.User, opts ...func(*CampaignOpts)) *model.Campaign {
	t.Helper()

	o := &CampaignOpts{
		PetName:     fmt.Sprintf("Campaign %s", randomID()[:6]),
		MaxDonation: "1000.00",
	}
	for _, fn := range opts {
		fn(o)
	}

	c := &model.Campaign{
		PetName:          o.PetName,
		PetImage:         "https://img.test.local/campaign.jpg",
		MaxDonation:      model.MustParseAmount(o.MaxDonation),
		LastDate:         time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		ShortDescription: "help",
		LongDescription:  "help this pet",
		AdderEmail:       owner.Email,
	}
	if err := f.campaigns.Create(ctx(t), c); err != nil {
		t.Fatalf("fixtures: failed to create campaign: %v", err)
	}
	return c
}

// Donate records a payment against campaign through the ledger, re-reading
// the campaign so repeated calls see the current version.
func (f *Factory) Donate(t *testing.T, campaign *model.Campaign, email, amount string) *model.Payment {
	t.Helper()

	current, err := f.ledger.GetCampaign(ctx(t), campaign.ID)
	if err != nil || current == nil {
		t.Fatalf("fixtures: failed to read campaign %s: %v", campaign.ID, err)
	}

	a := model.MustParseAmount(amount)
	write := model.LedgerWrite{
		CampaignID:      current.ID,
		ExpectedVersion: current.Version,
		NewTotal:        current.DonatedAmount.Add(a),
	}
	payment := &model.Payment{
		Email:        email,
		Amount:       a,
		ProcessorRef: "pi_" + randomID(),
	}

	updated, created, err := f.ledger.InsertDonation(ctx(t), write, payment)
	if err != nil {
		t.Fatalf("fixtures: failed to record donation: %v", err)
	}
	*campaign = *updated
	return created
}
