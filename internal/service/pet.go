package service

import (
	"context"
	"strings"

	"github.com/forgo/petzadopt/internal/model"
)

// PetRepository defines the interface for pet storage
type PetRepository interface {
	Create(ctx context.Context, pet *model.Pet) error
	GetByID(ctx context.Context, id string) (*model.Pet, error)
	ListAvailable(ctx context.Context, filter model.PetFilter) ([]*model.Pet, error)
	ListByAdder(ctx context.Context, email string) ([]*model.Pet, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Pet, error)
	SetAdopted(ctx context.Context, id string) (*model.Pet, error)
	Delete(ctx context.Context, id string) error
}

// AdminChecker reports the admin capability of a caller
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// PetService handles pet listings
type PetService struct {
	repo   PetRepository
	admins AdminChecker
}

// PetServiceConfig holds configuration for the pet service
type PetServiceConfig struct {
	Repo   PetRepository
	Admins AdminChecker
}

// NewPetService creates a new pet service
func NewPetService(cfg PetServiceConfig) *PetService {
	return &PetService{
		repo:   cfg.Repo,
		admins: cfg.Admins,
	}
}

// List returns pets open for adoption, newest first
func (s *PetService) List(ctx context.Context, filter model.PetFilter) ([]*model.Pet, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Name = strings.TrimSpace(filter.Name)
	if filter.Page.Limit <= 0 {
		filter.Page = model.NewPage(1, 0)
	}

	pets, err := s.repo.ListAvailable(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return pets, nil
}

// Get returns one pet
func (s *PetService) Get(ctx context.Context, id string) (*model.Pet, error) {
	petID, err := model.NormalizeRecordID(model.TablePet, id)
	if err != nil {
		return nil, ErrInvalidID
	}

	pet, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return nil, storeError(err)
	}
	if pet == nil {
		return nil, ErrPetNotFound
	}
	return pet, nil
}

// ListByAdder returns the pets listed by email
func (s *PetService) ListByAdder(ctx context.Context, email string) ([]*model.Pet, error) {
	if !model.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	pets, err := s.repo.ListByAdder(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	return pets, nil
}

// Create lists a pet on behalf of callerEmail
func (s *PetService) Create(ctx context.Context, callerEmail string, req *model.CreatePetRequest) (*model.Pet, error) {
	pet := &model.Pet{
		PetName:          strings.TrimSpace(req.PetName),
		PetAge:           req.PetAge,
		PetImage:         strings.TrimSpace(req.PetImage),
		Category:         strings.TrimSpace(req.Category),
		PetLocation:      strings.TrimSpace(req.PetLocation),
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		AdderEmail:       callerEmail,
	}

	if err := s.repo.Create(ctx, pet); err != nil {
		return nil, storeError(err)
	}
	return pet, nil
}

// Update changes the supplied fields of a pet. Owner or admin.
func (s *PetService) Update(ctx context.Context, callerEmail, id string, req *model.UpdatePetRequest) (*model.Pet, error) {
	pet, err := s.authorize(ctx, callerEmail, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	setString(updates, "pet_name", req.PetName)
	setString(updates, "pet_image", req.PetImage)
	setString(updates, "category", req.Category)
	setString(updates, "pet_location", req.PetLocation)
	setString(updates, "short_description", req.ShortDescription)
	setString(updates, "long_description", req.LongDescription)
	if req.PetAge != nil {
		updates["pet_age"] = *req.PetAge
	}
	if len(updates) == 0 {
		return pet, nil
	}

	updated, err := s.repo.Update(ctx, pet.ID, updates)
	if err != nil {
		return nil, storeError(err)
	}
	if updated == nil {
		return nil, ErrPetNotFound
	}
	return updated, nil
}

// MarkAdopted flags a pet adopted outside the request flow. Owner or admin.
func (s *PetService) MarkAdopted(ctx context.Context, callerEmail, id string) (*model.Pet, error) {
	pet, err := s.authorize(ctx, callerEmail, id)
	if err != nil {
		return nil, err
	}
	if pet.Adopted {
		return pet, nil
	}

	updated, err := s.repo.SetAdopted(ctx, pet.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if updated == nil {
		return nil, ErrPetNotFound
	}
	return updated, nil
}

// Delete removes a pet and its adoption requests. Owner or admin.
func (s *PetService) Delete(ctx context.Context, callerEmail, id string) error {
	pet, err := s.authorize(ctx, callerEmail, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, pet.ID); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *PetService) authorize(ctx context.Context, callerEmail, id string) (*model.Pet, error) {
	pet, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(ctx, s.admins, callerEmail, pet.AdderEmail); err != nil {
		return nil, err
	}
	return pet, nil
}

// requireOwnerOrAdmin allows the listing's adder and any admin
func requireOwnerOrAdmin(ctx context.Context, admins AdminChecker, callerEmail, ownerEmail string) error {
	if callerEmail == "" {
		return ErrUnauthorized
	}
	if strings.EqualFold(callerEmail, ownerEmail) {
		return nil
	}
	isAdmin, err := admins.IsAdmin(ctx, callerEmail)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotOwner
	}
	return nil
}

func setString(updates map[string]interface{}, field string, value *string) {
	if value != nil {
		updates[field] = strings.TrimSpace(*value)
	}
}
