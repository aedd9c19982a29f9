package main

import (
	"net/http"

	"github.com/forgo/petzadopt/internal/handler"
	"github.com/forgo/petzadopt/internal/middleware"
)

// authenticator verifies bearer tokens and answers the admin capability check
type authenticator interface {
	middleware.TokenVerifier
	middleware.AdminChecker
}

// handlers groups everything the router dispatches to
type handlers struct {
	health    *handler.HealthHandler
	token     *handler.TokenHandler
	pets      *handler.PetHandler
	adoptions *handler.AdoptionHandler
	campaigns *handler.CampaignHandler
	donations *handler.DonationHandler
	events    *handler.EventsHandler
	users     *handler.UserHandler
	seeder    *handler.AdminSeederHandler // nil outside development
}

// registerRoutes mounts every endpoint on mux
func registerRoutes(mux *http.ServeMux, auth authenticator, h handlers) {
	authMiddleware := middleware.Auth(auth)
	adminMiddleware := func(next http.Handler) http.Handler {
		return authMiddleware(middleware.AdminAuth(auth)(next))
	}

	// Health check endpoints
	mux.HandleFunc("GET /health", h.health.Health)
	mux.HandleFunc("GET /v1/health", h.health.Health)

	// Token endpoint (public)
	mux.HandleFunc("POST /v1/jwt", h.token.Issue)

	// Pet endpoints
	mux.HandleFunc("GET /v1/pets", h.pets.List)
	mux.HandleFunc("GET /v1/pets/{petId}", h.pets.Get)
	mux.Handle("POST /v1/pets", authMiddleware(http.HandlerFunc(h.pets.Create)))
	mux.Handle("PATCH /v1/pets/{petId}", authMiddleware(http.HandlerFunc(h.pets.Update)))
	mux.Handle("PATCH /v1/pets/{petId}/adopt", authMiddleware(http.HandlerFunc(h.pets.MarkAdopted)))
	mux.Handle("DELETE /v1/pets/{petId}", authMiddleware(http.HandlerFunc(h.pets.Delete)))
	mux.Handle("GET /v1/me/pets", authMiddleware(http.HandlerFunc(h.pets.ListMine)))

	// Adoption request endpoints
	mux.Handle("POST /v1/adopts", authMiddleware(http.HandlerFunc(h.adoptions.Create)))
	mux.Handle("GET /v1/adopts/incoming", authMiddleware(http.HandlerFunc(h.adoptions.ListIncoming)))
	mux.Handle("POST /v1/adopts/{adoptId}/accept", authMiddleware(http.HandlerFunc(h.adoptions.Accept)))
	mux.Handle("DELETE /v1/adopts/{adoptId}", authMiddleware(http.HandlerFunc(h.adoptions.Reject)))
	mux.Handle("GET /v1/me/adopts", authMiddleware(http.HandlerFunc(h.adoptions.ListMine)))

	// Campaign endpoints
	mux.HandleFunc("GET /v1/campaigns", h.campaigns.List)
	mux.HandleFunc("GET /v1/campaigns/{campaignId}", h.campaigns.Get)
	mux.HandleFunc("GET /v1/campaigns/{campaignId}/donors", h.donations.ListDonors)
	mux.HandleFunc("GET /v1/campaigns/{campaignId}/events", h.events.Stream)
	mux.Handle("POST /v1/campaigns", authMiddleware(http.HandlerFunc(h.campaigns.Create)))
	mux.Handle("PATCH /v1/campaigns/{campaignId}", authMiddleware(http.HandlerFunc(h.campaigns.Update)))
	mux.Handle("PATCH /v1/campaigns/{campaignId}/pause", authMiddleware(http.HandlerFunc(h.campaigns.TogglePause)))
	mux.Handle("DELETE /v1/campaigns/{campaignId}", authMiddleware(http.HandlerFunc(h.campaigns.Delete)))
	mux.Handle("GET /v1/me/campaigns", authMiddleware(http.HandlerFunc(h.campaigns.ListMine)))

	// Payment endpoints
	mux.Handle("POST /v1/payments/intent", authMiddleware(http.HandlerFunc(h.donations.CreateIntent)))
	mux.Handle("POST /v1/payments", authMiddleware(http.HandlerFunc(h.donations.RecordPayment)))
	mux.Handle("GET /v1/me/donations", authMiddleware(http.HandlerFunc(h.donations.ListMine)))

	// User endpoints
	mux.Handle("PUT /v1/users", authMiddleware(http.HandlerFunc(h.users.Upsert)))
	mux.Handle("GET /v1/users/me", authMiddleware(http.HandlerFunc(h.users.Me)))
	mux.Handle("POST /v1/users/me/role-request", authMiddleware(http.HandlerFunc(h.users.RequestRoleUpgrade)))

	// Admin endpoints - requires admin role
	mux.Handle("GET /v1/admin/users", adminMiddleware(http.HandlerFunc(h.users.ListUsers)))
	mux.Handle("GET /v1/admin/role-requests", adminMiddleware(http.HandlerFunc(h.users.ListRoleRequests)))
	mux.Handle("PATCH /v1/admin/users/{userId}/promote", adminMiddleware(http.HandlerFunc(h.users.Promote)))
	mux.Handle("DELETE /v1/admin/payments/{paymentId}", adminMiddleware(http.HandlerFunc(h.donations.Refund)))
	mux.Handle("PATCH /v1/admin/campaigns/{campaignId}/reverse", adminMiddleware(http.HandlerFunc(h.donations.ReverseDonation)))
	mux.Handle("POST /v1/admin/campaigns/{campaignId}/reconcile", adminMiddleware(http.HandlerFunc(h.donations.Reconcile)))

	if h.seeder != nil {
		mux.Handle("POST /v1/admin/seed", adminMiddleware(http.HandlerFunc(h.seeder.Seed)))
	}
}
