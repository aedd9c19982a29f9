package service

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// AdoptionRepository defines the interface for adoption request storage
type AdoptionRepository interface {
	Create(ctx context.Context, req *model.AdoptionRequest) error
	GetByID(ctx context.Context, id string) (*model.AdoptionRequest, error)
	FindByEmailAndPet(ctx context.Context, email, petID string) (*model.AdoptionRequest, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]*model.AdoptionRequest, error)
	ListByRequester(ctx context.Context, email string) ([]*model.AdoptionRequest, error)
	Accept(ctx context.Context, requestID, petID string) (*model.AdoptionRequest, error)
	Delete(ctx context.Context, id string) error
}

// PetLookup reads pets for the adoption flow
type PetLookup interface {
	GetByID(ctx context.Context, id string) (*model.Pet, error)
}

// AdoptionService handles adoption requests
type AdoptionService struct {
	repo AdoptionRepository
	pets PetLookup
}

// AdoptionServiceConfig holds configuration for the adoption service
type AdoptionServiceConfig struct {
	Repo AdoptionRepository
	Pets PetLookup
}

// NewAdoptionService creates a new adoption service
func NewAdoptionService(cfg AdoptionServiceConfig) *AdoptionService {
	return &AdoptionService{
		repo: cfg.Repo,
		pets: cfg.Pets,
	}
}

// Request files callerEmail's adoption request for a pet. A second request
// by the same email for the same pet is a conflict.
func (s *AdoptionService) Request(ctx context.Context, callerEmail string, req *model.CreateAdoptionRequest) (*model.AdoptionRequest, error) {
	petID, err := model.NormalizeRecordID(model.TablePet, req.PetID)
	if err != nil {
		return nil, ErrInvalidID
	}

	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, storeError(err)
	}
	if pet == nil {
		return nil, ErrPetNotFound
	}
	if pet.Adopted {
		return nil, ErrPetAlreadyAdopted
	}
	if strings.EqualFold(pet.AdderEmail, callerEmail) {
		return nil, ErrCannotAdoptOwnPet
	}

	existing, err := s.repo.FindByEmailAndPet(ctx, callerEmail, pet.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if existing != nil {
		return nil, ErrAdoptionExists
	}

	adoption := &model.AdoptionRequest{
		Email:      callerEmail,
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		PetID:      pet.ID,
		PetName:    pet.PetName,
		PetImage:   pet.PetImage,
		OwnerEmail: pet.AdderEmail,
		Status:     model.AdoptionStatusRequested,
	}
	if err := s.repo.Create(ctx, adoption); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAdoptionExists
		}
		return nil, storeError(err)
	}
	return adoption, nil
}

// ListIncoming returns requests for pets listed by ownerEmail
func (s *AdoptionService) ListIncoming(ctx context.Context, ownerEmail string) ([]*model.AdoptionRequest, error) {
	requests, err := s.repo.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, storeError(err)
	}
	return requests, nil
}

// ListMine returns the requests filed by email
func (s *AdoptionService) ListMine(ctx context.Context, email string) ([]*model.AdoptionRequest, error) {
	requests, err := s.repo.ListByRequester(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	return requests, nil
}

// acceptAttempts bounds how often Accept re-reads after a conflict
const acceptAttempts = 5

// Accept approves a pending request and marks its pet adopted. Pet owner only.
// A conflict is either the status guard (someone else resolved the request)
// or a commit race in the store; re-reading tells the two apart.
func (s *AdoptionService) Accept(ctx context.Context, callerEmail, id string) (*model.AdoptionRequest, error) {
	for attempt := 0; attempt < acceptAttempts; attempt++ {
		adoption, err := s.ownedRequest(ctx, callerEmail, id)
		if err != nil {
			return nil, err
		}
		if adoption.Status != model.AdoptionStatusRequested {
			return nil, ErrAdoptionNotPending
		}

		accepted, err := s.repo.Accept(ctx, adoption.ID, adoption.PetID)
		switch {
		case err == nil:
			return accepted, nil
		case errors.Is(err, database.ErrConflict):
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		default:
			return nil, storeError(err)
		}
	}
	return nil, ErrAdoptionContention
}

// Reject deletes a pending request. Pet owner only.
func (s *AdoptionService) Reject(ctx context.Context, callerEmail, id string) error {
	adoption, err := s.ownedRequest(ctx, callerEmail, id)
	if err != nil {
		return err
	}
	if adoption.Status != model.AdoptionStatusRequested {
		return ErrAdoptionNotPending
	}
	if err := s.repo.Delete(ctx, adoption.ID); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *AdoptionService) ownedRequest(ctx context.Context, callerEmail, id string) (*model.AdoptionRequest, error) {
	requestID, err := model.NormalizeRecordID(model.TableAdoption, id)
	if err != nil {
		return nil, ErrInvalidID
	}

	adoption, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, storeError(err)
	}
	if adoption == nil {
		return nil, ErrAdoptionNotFound
	}
	if !strings.EqualFold(adoption.OwnerEmail, callerEmail) {
		return nil, ErrNotOwner
	}
	return adoption, nil
}
