package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// PetRepository handles pet listing data access
type PetRepository struct {
	db database.Database
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db database.Database) *PetRepository {
	return &PetRepository{db: db}
}

// Create inserts a pet listing and fills in its id and added_time
func (r *PetRepository) Create(ctx context.Context, pet *model.Pet) error {
	query := `
		CREATE pet CONTENT {
			pet_name: $pet_name,
			pet_age: $pet_age,
			pet_image: $pet_image,
			category: $category,
			pet_location: $pet_location,
			short_description: $short_description,
			long_description: $long_description,
			adder_email: $adder_email,
			adopted: false,
			added_time: time::now()
		}
	`
	vars := map[string]interface{}{
		"pet_name":          pet.PetName,
		"pet_age":           pet.PetAge,
		"pet_image":         pet.PetImage,
		"category":          pet.Category,
		"pet_location":      pet.PetLocation,
		"short_description": pet.ShortDescription,
		"long_description":  pet.LongDescription,
		"adder_email":       pet.AdderEmail,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := decodeOne[model.Pet](firstResult(result), nil)
	if err != nil {
		return err
	}
	*pet = *created
	return nil
}

// GetByID retrieves a pet by ID. Returns nil if not found.
func (r *PetRepository) GetByID(ctx context.Context, id string) (*model.Pet, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.getOne(ctx, query, vars)
}

// ListAvailable returns pets not yet adopted, newest first
func (r *PetRepository) ListAvailable(ctx context.Context, filter model.PetFilter) ([]*model.Pet, error) {
	conditions := []string{"adopted = false"}
	vars := map[string]interface{}{
		"limit":  filter.Page.Limit,
		"offset": filter.Page.Offset,
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = $category")
		vars["category"] = filter.Category
	}
	if filter.Name != "" {
		conditions = append(conditions, "string::contains(string::lowercase(pet_name), $name)")
		vars["name"] = strings.ToLower(filter.Name)
	}

	query := `SELECT * FROM pet WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY added_time DESC LIMIT $limit START $offset`

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Pet](result, nil)
}

// ListByAdder returns every pet listed by email, newest first
func (r *PetRepository) ListByAdder(ctx context.Context, email string) ([]*model.Pet, error) {
	query := `SELECT * FROM pet WHERE adder_email = $email ORDER BY added_time DESC`
	vars := map[string]interface{}{"email": email}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Pet](result, nil)
}

// Update merges the supplied fields into a pet. Returns nil if not found.
func (r *PetRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*model.Pet, error) {
	query := `UPDATE type::record($id) MERGE $updates RETURN AFTER`
	vars := map[string]interface{}{
		"id":      id,
		"updates": updates,
	}

	return r.getOne(ctx, query, vars)
}

// SetAdopted flags a pet as adopted. Returns nil if not found.
func (r *PetRepository) SetAdopted(ctx context.Context, id string) (*model.Pet, error) {
	query := `UPDATE type::record($id) SET adopted = true RETURN AFTER`
	vars := map[string]interface{}{"id": id}

	return r.getOne(ctx, query, vars)
}

// Delete removes a pet together with its adoption requests
func (r *PetRepository) Delete(ctx context.Context, id string) error {
	vars := map[string]interface{}{"id": id}
	return database.RunAtomic(ctx, r.db,
		database.Statement{Query: `DELETE adoption WHERE pet_id = $id`, Vars: vars},
		database.Statement{Query: `DELETE type::record($id)`, Vars: vars},
	)
}

func (r *PetRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Pet, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	pet, err := decodeOne[model.Pet](result, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pet, nil
}
