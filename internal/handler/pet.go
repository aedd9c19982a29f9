package handler

import (
	"context"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
)

// PetManager is the pet catalog used by PetHandler
type PetManager interface {
	List(ctx context.Context, filter model.PetFilter) ([]*model.Pet, error)
	Get(ctx context.Context, id string) (*model.Pet, error)
	ListByAdder(ctx context.Context, email string) ([]*model.Pet, error)
	Create(ctx context.Context, callerEmail string, req *model.CreatePetRequest) (*model.Pet, error)
	Update(ctx context.Context, callerEmail, id string, req *model.UpdatePetRequest) (*model.Pet, error)
	MarkAdopted(ctx context.Context, callerEmail, id string) (*model.Pet, error)
	Delete(ctx context.Context, callerEmail, id string) error
}

// PetHandler handles pet listing endpoints
type PetHandler struct {
	pets PetManager
}

// NewPetHandler creates a new pet handler
func NewPetHandler(pets PetManager) *PetHandler {
	return &PetHandler{pets: pets}
}

// List handles GET /v1/pets - browse pets still up for adoption
func (h *PetHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.PetFilter{
		Category: r.URL.Query().Get("category"),
		Name:     r.URL.Query().Get("search"),
		Page:     pageFromQuery(r),
	}

	pets, err := h.pets.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "list pets")
		return
	}

	WriteCollection(w, http.StatusOK, pets, paginationFor(r, filter.Page, len(pets)), map[string]string{
		"self": "/v1/pets",
	})
}

// Get handles GET /v1/pets/{petId}
func (h *PetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "petId")
	if !ok {
		return
	}

	pet, err := h.pets.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get pet")
		return
	}

	WriteData(w, http.StatusOK, pet, map[string]string{
		"self": "/v1/pets/" + pet.ID,
	})
}

// ListMine handles GET /v1/me/pets - pets the caller listed
func (h *PetHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	pets, err := h.pets.ListByAdder(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "list my pets")
		return
	}

	WriteCollection(w, http.StatusOK, pets, nil, map[string]string{
		"self": "/v1/me/pets",
	})
}

// Create handles POST /v1/pets
func (h *PetHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.CreatePetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	pet, err := h.pets.Create(r.Context(), email, &req)
	if err != nil {
		writeServiceError(w, r, err, "create pet")
		return
	}

	WriteData(w, http.StatusCreated, pet, map[string]string{
		"self": "/v1/pets/" + pet.ID,
	})
}

// Update handles PATCH /v1/pets/{petId}
func (h *PetHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "petId")
	if !ok {
		return
	}

	var req model.UpdatePetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	pet, err := h.pets.Update(r.Context(), email, id, &req)
	if err != nil {
		writeServiceError(w, r, err, "update pet")
		return
	}

	WriteData(w, http.StatusOK, pet, map[string]string{
		"self": "/v1/pets/" + pet.ID,
	})
}

// MarkAdopted handles PATCH /v1/pets/{petId}/adopt
func (h *PetHandler) MarkAdopted(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "petId")
	if !ok {
		return
	}

	pet, err := h.pets.MarkAdopted(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, r, err, "adopt pet")
		return
	}

	WriteData(w, http.StatusOK, pet, nil)
}

// Delete handles DELETE /v1/pets/{petId}
func (h *PetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "petId")
	if !ok {
		return
	}

	if err := h.pets.Delete(r.Context(), email, id); err != nil {
		writeServiceError(w, r, err, "delete pet")
		return
	}

	WriteNoContent(w)
}
