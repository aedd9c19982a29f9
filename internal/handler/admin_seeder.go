package handler

import (
	"context"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/seed"
)

const maxSeedBodyBytes = 1 << 20

// SeedLoader writes a fixture document
type SeedLoader interface {
	Load(ctx context.Context, doc *seed.Document) (*seed.Result, error)
}

// AdminSeederHandler handles the development seeding endpoint
type AdminSeederHandler struct {
	loader SeedLoader
}

// NewAdminSeederHandler creates a new admin seeder handler
func NewAdminSeederHandler(loader SeedLoader) *AdminSeederHandler {
	return &AdminSeederHandler{loader: loader}
}

// Seed handles POST /v1/admin/seed. The body is a seed document in YAML
// (or JSON, which YAML accepts).
func (h *AdminSeederHandler) Seed(w http.ResponseWriter, r *http.Request) {
	doc, err := seed.Parse(http.MaxBytesReader(w, r.Body, maxSeedBodyBytes))
	if err != nil {
		WriteError(w, model.NewBadRequestError("Invalid seed document: "+err.Error()))
		return
	}
	if err := doc.Validate(); err != nil {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "document", Message: err.Error()},
		}))
		return
	}

	result, err := h.loader.Load(r.Context(), doc)
	if err != nil {
		writeServiceError(w, r, err, "seed")
		return
	}

	WriteData(w, http.StatusCreated, result, map[string]string{
		"self": "/v1/admin/seed",
	})
}
