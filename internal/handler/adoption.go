package handler

import (
	"context"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
)

// AdoptionManager is the adoption workflow used by AdoptionHandler
type AdoptionManager interface {
	Request(ctx context.Context, callerEmail string, req *model.CreateAdoptionRequest) (*model.AdoptionRequest, error)
	ListIncoming(ctx context.Context, ownerEmail string) ([]*model.AdoptionRequest, error)
	ListMine(ctx context.Context, email string) ([]*model.AdoptionRequest, error)
	Accept(ctx context.Context, callerEmail, id string) (*model.AdoptionRequest, error)
	Reject(ctx context.Context, callerEmail, id string) error
}

// AdoptionHandler handles adoption request endpoints
type AdoptionHandler struct {
	adoptions AdoptionManager
}

// NewAdoptionHandler creates a new adoption handler
func NewAdoptionHandler(adoptions AdoptionManager) *AdoptionHandler {
	return &AdoptionHandler{adoptions: adoptions}
}

// Create handles POST /v1/adopts - ask a pet's owner to adopt it
func (h *AdoptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.CreateAdoptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	adoption, err := h.adoptions.Request(r.Context(), email, &req)
	if err != nil {
		writeServiceError(w, r, err, "request adoption")
		return
	}

	WriteData(w, http.StatusCreated, adoption, nil)
}

// ListIncoming handles GET /v1/adopts/incoming - requests for the caller's pets
func (h *AdoptionHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	requests, err := h.adoptions.ListIncoming(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "list adoption requests")
		return
	}

	WriteCollection(w, http.StatusOK, requests, nil, nil)
}

// ListMine handles GET /v1/me/adopts - requests the caller made
func (h *AdoptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	requests, err := h.adoptions.ListMine(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "list my adoption requests")
		return
	}

	WriteCollection(w, http.StatusOK, requests, nil, nil)
}

// Accept handles POST /v1/adopts/{adoptId}/accept
func (h *AdoptionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "adoptId")
	if !ok {
		return
	}

	adoption, err := h.adoptions.Accept(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, r, err, "accept adoption")
		return
	}

	WriteData(w, http.StatusOK, adoption, nil)
}

// Reject handles DELETE /v1/adopts/{adoptId}
func (h *AdoptionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "adoptId")
	if !ok {
		return
	}

	if err := h.adoptions.Reject(r.Context(), email, id); err != nil {
		writeServiceError(w, r, err, "reject adoption")
		return
	}

	WriteNoContent(w)
}
