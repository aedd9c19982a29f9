package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A second user with the same email fails with
// database.ErrDuplicate from the unique email index.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	role := user.Role
	if role == "" {
		role = model.UserRoleUser
	}
	status := user.Status
	if status == "" {
		status = model.UserStatusNone
	}

	query := `
		CREATE user CONTENT {
			email: $email,
			name: $name,
			photo: $photo,
			role: $role,
			status: $status,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":  user.Email,
		"name":   optional(user.Name),
		"photo":  optional(user.Photo),
		"role":   role,
		"status": status,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := decodeOne[model.User](firstResult(result), nil)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.getOne(ctx, query, vars)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM user WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	return r.getOne(ctx, query, vars)
}

// SetStatus sets the role-request status of the user with email.
// Returns nil when no such user exists.
func (r *UserRepository) SetStatus(ctx context.Context, email string, status model.UserStatus) (*model.User, error) {
	query := `UPDATE user SET status = $status WHERE email = $email RETURN AFTER`
	vars := map[string]interface{}{
		"email":  email,
		"status": status,
	}

	return r.getOne(ctx, query, vars)
}

// SetRole updates a user's role. Returns nil when no such user exists.
func (r *UserRepository) SetRole(ctx context.Context, userID string, role model.UserRole) (*model.User, error) {
	query := `UPDATE type::record($id) SET role = $role RETURN AFTER`
	vars := map[string]interface{}{
		"id":   userID,
		"role": role,
	}

	return r.getOne(ctx, query, vars)
}

// List returns users ordered by creation time
func (r *UserRepository) List(ctx context.Context, page model.Page) ([]*model.User, error) {
	query := `SELECT * FROM user ORDER BY created_on ASC LIMIT $limit START $offset`
	vars := map[string]interface{}{
		"limit":  page.Limit,
		"offset": page.Offset,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.User](result, nil)
}

// ListByStatus returns users whose role-request status equals status
func (r *UserRepository) ListByStatus(ctx context.Context, status model.UserStatus) ([]*model.User, error) {
	query := `SELECT * FROM user WHERE status = $status AND role != 'admin' ORDER BY created_on ASC`
	vars := map[string]interface{}{"status": status}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeList[model.User](result, nil)
}

func (r *UserRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := decodeOne[model.User](result, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// firstResult returns the first statement's wrapper from a Query result
func firstResult(results []interface{}) interface{} {
	if len(results) == 0 {
		return nil
	}
	return results[0]
}
