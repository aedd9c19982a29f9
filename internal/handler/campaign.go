package handler

import (
	"context"
	"net/http"

	"github.com/forgo/petzadopt/internal/model"
)

// CampaignManager is the campaign catalog used by CampaignHandler
type CampaignManager interface {
	List(ctx context.Context, page model.Page) ([]*model.Campaign, error)
	Get(ctx context.Context, id string) (*model.Campaign, error)
	ListByAdder(ctx context.Context, email string) ([]*model.Campaign, error)
	Create(ctx context.Context, callerEmail string, req *model.CreateCampaignRequest) (*model.Campaign, error)
	Update(ctx context.Context, callerEmail, id string, req *model.UpdateCampaignRequest) (*model.Campaign, error)
	TogglePause(ctx context.Context, callerEmail, id string) (*model.Campaign, error)
	Delete(ctx context.Context, callerEmail, id string) error
}

// CampaignHandler handles donation campaign endpoints
type CampaignHandler struct {
	campaigns CampaignManager
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaigns CampaignManager) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// List handles GET /v1/campaigns - newest first
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	campaigns, err := h.campaigns.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err, "list campaigns")
		return
	}

	WriteCollection(w, http.StatusOK, campaigns, paginationFor(r, page, len(campaigns)), map[string]string{
		"self": "/v1/campaigns",
	})
}

// Get handles GET /v1/campaigns/{campaignId}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	campaign, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get campaign")
		return
	}

	WriteData(w, http.StatusOK, campaign, map[string]string{
		"self":   "/v1/campaigns/" + campaign.ID,
		"donors": "/v1/campaigns/" + campaign.ID + "/donors",
	})
}

// ListMine handles GET /v1/me/campaigns
func (h *CampaignHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	campaigns, err := h.campaigns.ListByAdder(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "list my campaigns")
		return
	}

	WriteCollection(w, http.StatusOK, campaigns, nil, nil)
}

// Create handles POST /v1/campaigns
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.CreateCampaignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	campaign, err := h.campaigns.Create(r.Context(), email, &req)
	if err != nil {
		writeServiceError(w, r, err, "create campaign")
		return
	}

	WriteData(w, http.StatusCreated, campaign, map[string]string{
		"self": "/v1/campaigns/" + campaign.ID,
	})
}

// Update handles PATCH /v1/campaigns/{campaignId}
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	var req model.UpdateCampaignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	campaign, err := h.campaigns.Update(r.Context(), email, id, &req)
	if err != nil {
		writeServiceError(w, r, err, "update campaign")
		return
	}

	WriteData(w, http.StatusOK, campaign, nil)
}

// TogglePause handles PATCH /v1/campaigns/{campaignId}/pause
func (h *CampaignHandler) TogglePause(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	campaign, err := h.campaigns.TogglePause(r.Context(), email, id)
	if err != nil {
		writeServiceError(w, r, err, "pause campaign")
		return
	}

	WriteData(w, http.StatusOK, campaign, nil)
}

// Delete handles DELETE /v1/campaigns/{campaignId}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	if err := h.campaigns.Delete(r.Context(), email, id); err != nil {
		writeServiceError(w, r, err, "delete campaign")
		return
	}

	WriteNoContent(w)
}
