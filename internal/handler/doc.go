// Package handler provides HTTP request handlers for the PetzAdopt API.
//
// The handler package contains all HTTP endpoint implementations organized by domain.
// Each handler struct wraps the service it serves (pets, adoptions, campaigns,
// donations, users) behind a small interface declared next to it.
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts the service it calls
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Service errors are mapped by kind to RFC 9457 Problem Details responses
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: Single resource with optional HATEOAS links
//   - WriteCollection: Paginated list of resources
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// Most handlers require authentication via JWT tokens. The auth middleware
// verifies the bearer token and exposes the caller via middleware.GetUserEmail.
// Ownership checks happen in the services, which receive that email.
//
// # Example Usage
//
//	pets := NewPetHandler(petService)
//	mux.HandleFunc("GET /v1/pets", pets.List)
//	mux.Handle("POST /v1/pets", middleware.Auth(guard)(http.HandlerFunc(pets.Create)))
package handler
