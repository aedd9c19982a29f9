package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/forgo/petzadopt/internal/model"
)

// EventType represents the type of event
type EventType string

const (
	// Ledger events
	EventDonation   EventType = "campaign.donation"
	EventRefund     EventType = "campaign.refund"
	EventReversal   EventType = "campaign.reversal"
	EventReconciled EventType = "campaign.reconciled"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

const (
	defaultHeartbeat  = 30 * time.Second
	subscriberBacklog = 100
)

// Event represents a server-sent event
type Event struct {
	Type       EventType   `json:"type"`
	Data       interface{} `json:"data"`
	CampaignID string      `json:"-"` // Used for routing, not sent to client
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// TotalChanged is the payload of every ledger event
type TotalChanged struct {
	CampaignID    string       `json:"campaign_id"`
	DonatedAmount model.Amount `json:"donated_amount"`
	Delta         model.Amount `json:"delta"`
}

// NewTotalEvent creates a ledger event for a campaign's new total
func NewTotalEvent(eventType EventType, campaignID string, total, delta model.Amount) *Event {
	return &Event{
		Type:       eventType,
		CampaignID: campaignID,
		Data: TotalChanged{
			CampaignID:    campaignID,
			DonatedAmount: total,
			Delta:         delta,
		},
	}
}

// EventPublisher receives committed ledger changes
type EventPublisher interface {
	Publish(event *Event)
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID         string
	CampaignID string
	Events     chan *Event
	Done       chan struct{}
}

// EventHub fans ledger events out to the subscribers of each campaign.
// Slow subscribers drop events instead of blocking the ledger.
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // campaignID -> subscriberID -> subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventHub creates a new event hub. A zero interval uses 30s heartbeats.
func NewEventHub(heartbeat time.Duration) *EventHub {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	hub := &EventHub{
		subscribers: make(map[string]map[string]*Subscriber),
		heartbeat:   time.NewTicker(heartbeat),
		done:        make(chan struct{}),
	}
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber for a campaign
func (h *EventHub) Subscribe(campaignID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:         subscriberID,
		CampaignID: campaignID,
		Events:     make(chan *Event, subscriberBacklog),
		Done:       make(chan struct{}),
	}

	select {
	case <-h.done:
		// Closed hub: hand back a finished subscription
		close(sub.Done)
		close(sub.Events)
		return sub
	default:
	}

	if h.subscribers[campaignID] == nil {
		h.subscribers[campaignID] = make(map[string]*Subscriber)
	}
	h.subscribers[campaignID][subscriberID] = sub

	return sub
}

// Unsubscribe removes a subscriber. It is a no-op after Close.
func (h *EventHub) Unsubscribe(campaignID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	campaignSubs, ok := h.subscribers[campaignID]
	if !ok {
		return
	}
	if sub, ok := campaignSubs[subscriberID]; ok {
		close(sub.Done)
		close(sub.Events)
		delete(campaignSubs, subscriberID)
	}
	if len(campaignSubs) == 0 {
		delete(h.subscribers, campaignID)
	}
}

// Publish sends an event to all subscribers of its campaign
func (h *EventHub) Publish(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[event.CampaignID] {
		select {
		case sub.Events <- event:
		default:
			// Buffer full, skip this subscriber
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.mu.RLock()
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			for _, campaignSubs := range h.subscribers {
				for _, sub := range campaignSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the hub and disconnects every subscriber
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()

		for campaignID, campaignSubs := range h.subscribers {
			for _, sub := range campaignSubs {
				close(sub.Done)
				close(sub.Events)
			}
			delete(h.subscribers, campaignID)
		}
	})
}

// SubscriberCount returns the number of subscribers for a campaign
func (h *EventHub) SubscriberCount(campaignID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[campaignID])
}

type noopPublisher struct{}

func (noopPublisher) Publish(*Event) {}
