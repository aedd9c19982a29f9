package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

type mockPets struct {
	listFunc   func(ctx context.Context, filter model.PetFilter) ([]*model.Pet, error)
	getFunc    func(ctx context.Context, id string) (*model.Pet, error)
	createFunc func(ctx context.Context, callerEmail string, req *model.CreatePetRequest) (*model.Pet, error)
	updateFunc func(ctx context.Context, callerEmail, id string, req *model.UpdatePetRequest) (*model.Pet, error)
	deleteFunc func(ctx context.Context, callerEmail, id string) error
}

func (m *mockPets) List(ctx context.Context, filter model.PetFilter) ([]*model.Pet, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockPets) Get(ctx context.Context, id string) (*model.Pet, error) {
	return m.getFunc(ctx, id)
}

func (m *mockPets) ListByAdder(ctx context.Context, email string) ([]*model.Pet, error) {
	return nil, nil
}

func (m *mockPets) Create(ctx context.Context, callerEmail string, req *model.CreatePetRequest) (*model.Pet, error) {
	return m.createFunc(ctx, callerEmail, req)
}

func (m *mockPets) Update(ctx context.Context, callerEmail, id string, req *model.UpdatePetRequest) (*model.Pet, error) {
	return m.updateFunc(ctx, callerEmail, id, req)
}

func (m *mockPets) MarkAdopted(ctx context.Context, callerEmail, id string) (*model.Pet, error) {
	return &model.Pet{ID: "pet:" + id, Adopted: true}, nil
}

func (m *mockPets) Delete(ctx context.Context, callerEmail, id string) error {
	return m.deleteFunc(ctx, callerEmail, id)
}

func validPetRequest() model.CreatePetRequest {
	return model.CreatePetRequest{
		PetName:          "Rex",
		PetAge:           3,
		PetImage:         "https://img.example/rex.jpg",
		Category:         "dog",
		PetLocation:      "Dhaka",
		ShortDescription: "Friendly",
	}
}

func TestPetList_ParsesFilterAndPage(t *testing.T) {
	t.Parallel()

	var got model.PetFilter
	h := NewPetHandler(&mockPets{
		listFunc: func(_ context.Context, filter model.PetFilter) ([]*model.Pet, error) {
			got = filter
			return []*model.Pet{{ID: "pet:a"}, {ID: "pet:b"}}, nil
		},
	})

	rr := serve("GET /v1/pets", h.List,
		makeJSONRequest(http.MethodGet, "/v1/pets?category=cat&search=tom&page=3&limit=2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cat", got.Category)
	assert.Equal(t, "tom", got.Name)
	assert.Equal(t, model.Page{Offset: 4, Limit: 2}, got.Page)

	var body CollectionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 3, body.Pagination.Page)
	assert.True(t, body.Pagination.HasMore)
	assert.Equal(t, "/v1/pets?category=cat&limit=2&page=4&search=tom", body.Pagination.Next)
}

func TestPetGet_NotFound(t *testing.T) {
	t.Parallel()

	h := NewPetHandler(&mockPets{
		getFunc: func(context.Context, string) (*model.Pet, error) {
			return nil, service.ErrPetNotFound
		},
	})

	rr := serve("GET /v1/pets/{petId}", h.Get, makeJSONRequest(http.MethodGet, "/v1/pets/nope", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "pet not found", parseErrorResponse(t, rr.Body.Bytes()).Detail)
}

func TestPetCreate(t *testing.T) {
	t.Parallel()

	h := NewPetHandler(&mockPets{
		createFunc: func(_ context.Context, email string, req *model.CreatePetRequest) (*model.Pet, error) {
			return &model.Pet{ID: "pet:new", PetName: req.PetName, AdderEmail: email}, nil
		},
	})

	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/pets", validPetRequest()), "owner@test.local")
	rr := serve("POST /v1/pets", h.Create, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var pet model.Pet
	decodeData(t, rr.Body.Bytes(), &pet)
	assert.Equal(t, "owner@test.local", pet.AdderEmail)
}

func TestPetCreate_Validation(t *testing.T) {
	t.Parallel()

	h := NewPetHandler(&mockPets{})
	body := validPetRequest()
	body.PetName = ""
	body.PetAge = -1

	req := withCaller(makeJSONRequest(http.MethodPost, "/v1/pets", body), "owner@test.local")
	rr := serve("POST /v1/pets", h.Create, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Len(t, parseErrorResponse(t, rr.Body.Bytes()).Errors, 2)
}

func TestPetUpdate_NotOwner(t *testing.T) {
	t.Parallel()

	h := NewPetHandler(&mockPets{
		updateFunc: func(context.Context, string, string, *model.UpdatePetRequest) (*model.Pet, error) {
			return nil, service.ErrNotOwner
		},
	})

	req := withCaller(makeJSONRequest(http.MethodPatch, "/v1/pets/a",
		model.UpdatePetRequest{PetName: strPtr("Max")}), "stranger@test.local")
	rr := serve("PATCH /v1/pets/{petId}", h.Update, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPetUpdate_EmptyBody(t *testing.T) {
	t.Parallel()

	h := NewPetHandler(&mockPets{})
	req := withCaller(makeJSONRequest(http.MethodPatch, "/v1/pets/a", model.UpdatePetRequest{}), "owner@test.local")
	rr := serve("PATCH /v1/pets/{petId}", h.Update, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPetDelete(t *testing.T) {
	t.Parallel()

	var deleted string
	h := NewPetHandler(&mockPets{
		deleteFunc: func(_ context.Context, _ string, id string) error {
			deleted = id
			return nil
		},
	})

	req := withCaller(makeJSONRequest(http.MethodDelete, "/v1/pets/a", nil), "owner@test.local")
	rr := serve("DELETE /v1/pets/{petId}", h.Delete, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "a", deleted)
}
