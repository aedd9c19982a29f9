package service

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	SetStatus(ctx context.Context, email string, status model.UserStatus) (*model.User, error)
	SetRole(ctx context.Context, userID string, role model.UserRole) (*model.User, error)
	List(ctx context.Context, page model.Page) ([]*model.User, error)
	ListByStatus(ctx context.Context, status model.UserStatus) ([]*model.User, error)
}

// AdminVerifier checks the admin capability of a caller
type AdminVerifier interface {
	VerifyAdmin(ctx context.Context, email string) error
}

// UserService is the user registry: first-login bootstrap and role escalation
type UserService struct {
	repo   UserRepository
	admins AdminVerifier
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	Repo   UserRepository
	Admins AdminVerifier
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		repo:   cfg.Repo,
		admins: cfg.Admins,
	}
}

// Upsert returns the stored user for req.Email, creating it on first call.
// An existing document is never modified. created reports whether this call
// inserted it.
func (s *UserService) Upsert(ctx context.Context, req *model.UpsertUserRequest) (user *model.User, created bool, err error) {
	email := strings.TrimSpace(req.Email)
	if !model.IsValidEmail(email) {
		return nil, false, ErrInvalidEmail
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, storeError(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user = &model.User{
		Email:  email,
		Name:   req.Name,
		Photo:  req.Photo,
		Role:   model.UserRoleUser,
		Status: model.UserStatusNone,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, database.ErrDuplicate) {
			return nil, false, storeError(err)
		}
		// A concurrent first login won the unique index; return its document.
		winner, getErr := s.repo.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, false, storeError(getErr)
		}
		if winner == nil {
			return nil, false, storeError(err)
		}
		return winner, false, nil
	}

	return user, true, nil
}

// Get returns the user with email
func (s *UserService) Get(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RequestRoleUpgrade records a self-service request to become admin.
// Admins are returned unchanged.
func (s *UserService) RequestRoleUpgrade(ctx context.Context, email string) (*model.User, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() || user.Status == model.UserStatusRequested {
		return user, nil
	}

	updated, err := s.repo.SetStatus(ctx, email, model.UserStatusRequested)
	if err != nil {
		return nil, storeError(err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// PromoteToAdmin grants the admin role to userID. callerEmail must itself be
// an admin; the check runs here as well as in the HTTP middleware. The
// stored status is left as is and reads as resolved once the role is admin.
func (s *UserService) PromoteToAdmin(ctx context.Context, callerEmail, userID string) (*model.User, error) {
	if err := s.admins.VerifyAdmin(ctx, callerEmail); err != nil {
		return nil, err
	}

	id, err := model.NormalizeRecordID(model.TableUser, userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	updated, err := s.repo.SetRole(ctx, id, model.UserRoleAdmin)
	if err != nil {
		return nil, storeError(err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, callerEmail string, page model.Page) ([]*model.User, error) {
	if err := s.admins.VerifyAdmin(ctx, callerEmail); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// ListRoleRequests returns non-admin users with a pending upgrade request. Admin only.
func (s *UserService) ListRoleRequests(ctx context.Context, callerEmail string) ([]*model.User, error) {
	if err := s.admins.VerifyAdmin(ctx, callerEmail); err != nil {
		return nil, err
	}
	users, err := s.repo.ListByStatus(ctx, model.UserStatusRequested)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}
