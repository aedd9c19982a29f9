package handler

import (
	"context"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
)

// UserRegistry is the user store surface used by the user handlers
type UserRegistry interface {
	Upsert(ctx context.Context, req *model.UpsertUserRequest) (*model.User, bool, error)
	Get(ctx context.Context, email string) (*model.User, error)
	RequestRoleUpgrade(ctx context.Context, email string) (*model.User, error)
	PromoteToAdmin(ctx context.Context, callerEmail, userID string) (*model.User, error)
	List(ctx context.Context, callerEmail string, page model.Page) ([]*model.User, error)
	ListRoleRequests(ctx context.Context, callerEmail string) ([]*model.User, error)
}

// UserHandler handles user bootstrap and role endpoints
type UserHandler struct {
	users UserRegistry
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserRegistry) *UserHandler {
	return &UserHandler{users: users}
}

// Upsert handles PUT /v1/users - called on every sign-in. The first call
// creates the user; later calls return it unchanged, except that a body
// with status "Requested" files a role upgrade request.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.UpsertUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}
	if req.Email != email {
		WriteError(w, model.NewForbiddenError("email does not match the authenticated user"))
		return
	}

	user, created, err := h.users.Upsert(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "upsert user")
		return
	}

	if req.Status == model.UserStatusRequested {
		user, err = h.users.RequestRoleUpgrade(r.Context(), email)
		if err != nil {
			writeServiceError(w, r, err, "request role upgrade")
			return
		}
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteData(w, status, user, map[string]string{
		"self": "/v1/users/me",
	})
}

// Me handles GET /v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// RequestRoleUpgrade handles POST /v1/users/me/role-request
func (h *UserHandler) RequestRoleUpgrade(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	user, err := h.users.RequestRoleUpgrade(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "request role upgrade")
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// ListUsers handles GET /v1/admin/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	page := pageFromQuery(r)

	users, err := h.users.List(r.Context(), email, page)
	if err != nil {
		writeServiceError(w, r, err, "list users")
		return
	}

	WriteCollection(w, http.StatusOK, users, paginationFor(r, page, len(users)), map[string]string{
		"self": "/v1/admin/users",
	})
}

// ListRoleRequests handles GET /v1/admin/role-requests
func (h *UserHandler) ListRoleRequests(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	users, err := h.users.ListRoleRequests(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "list role requests")
		return
	}

	WriteCollection(w, http.StatusOK, users, nil, nil)
}

// Promote handles PATCH /v1/admin/users/{userId}/promote
func (h *UserHandler) Promote(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	user, err := h.users.PromoteToAdmin(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, r, err, "promote user")
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}
