package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

// CampaignLookup resolves the campaign a stream is opened for
type CampaignLookup interface {
	Get(ctx context.Context, id string) (*model.Campaign, error)
}

// EventsHandler handles SSE event streaming
type EventsHandler struct {
	eventHub  *service.EventHub
	campaigns CampaignLookup
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventHub *service.EventHub, campaigns CampaignLookup) *EventsHandler {
	return &EventsHandler{
		eventHub:  eventHub,
		campaigns: campaigns,
	}
}

// Stream handles GET /v1/campaigns/{campaignId}/events
// The first event carries the current total; later ones follow each ledger write.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "campaignId")
	if !ok {
		return
	}

	campaign, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "stream campaign")
		return
	}

	// Check if the client supports SSE
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	subscriberID := uuid.New().String()

	sub := h.eventHub.Subscribe(campaign.ID, subscriberID)
	defer h.eventHub.Unsubscribe(campaign.ID, subscriberID)

	snapshot := &service.Event{
		Type: "connected",
		Data: map[string]interface{}{
			"subscriber_id":  subscriberID,
			"campaign_id":    campaign.ID,
			"donated_amount": campaign.DonatedAmount,
			"max_donation":   campaign.MaxDonation,
		},
	}
	fmt.Fprint(w, snapshot.Format())
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
