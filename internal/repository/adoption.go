package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// AdoptionRepository handles adoption request data access
type AdoptionRepository struct {
	db database.Database
}

// NewAdoptionRepository creates a new adoption repository
func NewAdoptionRepository(db database.Database) *AdoptionRepository {
	return &AdoptionRepository{db: db}
}

// Create inserts an adoption request. A second request for the same
// (email, pet_id) fails with database.ErrDuplicate.
func (r *AdoptionRepository) Create(ctx context.Context, req *model.AdoptionRequest) error {
	query := `
		CREATE adoption CONTENT {
			email: $email,
			name: $name,
			phone: $phone,
			address: $address,
			pet_id: $pet_id,
			pet_name: $pet_name,
			pet_image: $pet_image,
			owner_email: $owner_email,
			status: 'Requested',
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":       req.Email,
		"name":        req.Name,
		"phone":       req.Phone,
		"address":     req.Address,
		"pet_id":      req.PetID,
		"pet_name":    req.PetName,
		"pet_image":   req.PetImage,
		"owner_email": req.OwnerEmail,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: adoption already requested", database.ErrDuplicate)
		}
		return err
	}

	created, err := decodeOne[model.AdoptionRequest](firstResult(result), nil)
	if err != nil {
		return err
	}
	*req = *created
	return nil
}

// GetByID retrieves an adoption request. Returns nil if not found.
func (r *AdoptionRepository) GetByID(ctx context.Context, id string) (*model.AdoptionRequest, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.getOne(ctx, query, vars)
}

// FindByEmailAndPet returns the request email made for petID, or nil
func (r *AdoptionRepository) FindByEmailAndPet(ctx context.Context, email, petID string) (*model.AdoptionRequest, error) {
	query := `SELECT * FROM adoption WHERE email = $email AND pet_id = $pet_id LIMIT 1`
	vars := map[string]interface{}{
		"email":  email,
		"pet_id": petID,
	}

	return r.getOne(ctx, query, vars)
}

// ListByOwner returns requests made for pets listed by ownerEmail
func (r *AdoptionRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*model.AdoptionRequest, error) {
	query := `SELECT * FROM adoption WHERE owner_email = $email ORDER BY created_on DESC`
	return r.list(ctx, query, map[string]interface{}{"email": ownerEmail})
}

// ListByRequester returns requests made by email
func (r *AdoptionRepository) ListByRequester(ctx context.Context, email string) ([]*model.AdoptionRequest, error) {
	query := `SELECT * FROM adoption WHERE email = $email ORDER BY created_on DESC`
	return r.list(ctx, query, map[string]interface{}{"email": email})
}

// Accept moves a pending request to Adopted and flags its pet adopted in one
// transaction. Fails with database.ErrConflict when the request is no longer
// pending.
func (r *AdoptionRepository) Accept(ctx context.Context, requestID, petID string) (*model.AdoptionRequest, error) {
	tb := database.NewTxBuilder()
	tb.Add(`LET $accepted = UPDATE type::record($id) SET status = 'Adopted' WHERE status = 'Requested' RETURN AFTER`,
		map[string]interface{}{"id": requestID})
	tb.AddRaw(database.ThrowIfEmpty("$accepted"))
	tb.Add(`UPDATE type::record($id) SET adopted = true`, map[string]interface{}{"id": petID})
	tb.AddRaw(`RETURN $accepted[0]`)

	results, err := database.ExecuteTransaction(ctx, r.db, tb)
	if err != nil {
		return nil, err
	}

	last, err := database.LastResult(results)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.AdoptionRequest](last, nil)
}

// Delete removes an adoption request
func (r *AdoptionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

func (r *AdoptionRepository) list(ctx context.Context, query string, vars map[string]interface{}) ([]*model.AdoptionRequest, error) {
	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.AdoptionRequest](result, nil)
}

func (r *AdoptionRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.AdoptionRequest, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	req, err := decodeOne[model.AdoptionRequest](result, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}
