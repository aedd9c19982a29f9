package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/service"
)

type campaignLookupFunc func(ctx context.Context, id string) (*model.Campaign, error)

func (f campaignLookupFunc) Get(ctx context.Context, id string) (*model.Campaign, error) {
	return f(ctx, id)
}

func TestEventsHandler_Stream(t *testing.T) {
	t.Parallel()

	hub := service.NewEventHub(time.Hour)
	defer hub.Close()

	lookup := campaignLookupFunc(func(_ context.Context, id string) (*model.Campaign, error) {
		return &model.Campaign{
			ID:            "campaign:" + id,
			DonatedAmount: model.MustParseAmount("10"),
			MaxDonation:   model.MustParseAmount("100"),
		}, nil
	})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/campaigns/{campaignId}/events", NewEventsHandler(hub, lookup).Stream)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/campaigns/c1/events")
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	event, data := readEvent(t, reader)
	assert.Equal(t, "connected", event)
	assert.Contains(t, data, `"donated_amount":"10.00"`)
	assert.Contains(t, data, `"campaign_id":"campaign:c1"`)

	hub.Publish(service.NewTotalEvent(service.EventDonation, "campaign:other",
		model.MustParseAmount("1"), model.MustParseAmount("1")))
	hub.Publish(service.NewTotalEvent(service.EventDonation, "campaign:c1",
		model.MustParseAmount("15"), model.MustParseAmount("5")))

	event, data = readEvent(t, reader)
	assert.Equal(t, "campaign.donation", event)
	assert.Contains(t, data, `"donated_amount":"15.00"`)
	assert.Contains(t, data, `"delta":"5.00"`)

	require.NoError(t, resp.Body.Close())
	assert.Eventually(t, func() bool { return hub.SubscriberCount("campaign:c1") == 0 },
		2*time.Second, 10*time.Millisecond)
}

// readEvent reads one SSE frame and returns its event name and data line
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventsHandler_UnknownCampaign(t *testing.T) {
	t.Parallel()

	hub := service.NewEventHub(time.Hour)
	defer hub.Close()

	h := NewEventsHandler(hub, campaignLookupFunc(func(context.Context, string) (*model.Campaign, error) {
		return nil, service.ErrCampaignNotFound
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/nope/events", nil)
	req.SetPathValue("campaignId", "nope")
	rr := httptest.NewRecorder()

	h.Stream(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Zero(t, hub.SubscriberCount("campaign:nope"))
}
