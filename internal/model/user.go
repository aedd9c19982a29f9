package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // Default role
	UserRoleAdmin UserRole = "admin" // Manages users and every listing
)

// UserStatus tracks a self-service role escalation request
type UserStatus string

const (
	UserStatusNone      UserStatus = "none"
	UserStatusRequested UserStatus = "Requested"
)

// User represents a registered account. Email is unique.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name,omitempty"`
	Photo     *string    `json:"photo,omitempty"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedOn time.Time  `json:"created_on"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// HasPendingUpgrade reports an open role request. Promotion leaves the stored
// status untouched, so an admin with status Requested has nothing pending.
func (u *User) HasPendingUpgrade() bool {
	return u.Status == UserStatusRequested && !u.IsAdmin()
}

// UpsertUserRequest is the body of PUT /v1/users
type UpsertUserRequest struct {
	Email  string     `json:"email"`
	Name   *string    `json:"name,omitempty"`
	Photo  *string    `json:"photo,omitempty"`
	Status UserStatus `json:"status,omitempty"`
}

// Validate validates the upsert request
func (r *UpsertUserRequest) Validate() []FieldError {
	var errors []FieldError
	if !IsValidEmail(r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "a valid email is required"})
	}
	if r.Status != "" && r.Status != UserStatusNone && r.Status != UserStatusRequested {
		errors = append(errors, FieldError{Field: "status", Message: "status must be 'none' or 'Requested'"})
	}
	return errors
}
