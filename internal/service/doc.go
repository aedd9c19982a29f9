// Package service implements the business logic layer for the PetzAdopt API.
//
// The service package holds the domain rules and orchestrates repository
// operations. Services sit between the HTTP handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with its dependencies
//   - Methods take the caller's email explicitly when ownership or role matters
//   - Errors are the sentinels of errors.go, each belonging to one kind
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define the storage interfaces they consume, so tests run against
// in-memory fakes and the SurrealDB repositories satisfy them implicitly.
//
// # Donation Ledger
//
// LedgerService owns every write to a campaign's donated_amount. Each write
// is one transaction guarded on the campaign's version:
//
//	receipt, err := ledger.RecordDonation(ctx, campaignID, email, "25.00", "pi_123")
//	switch {
//	case errors.Is(err, ErrKindConflict):       // duplicate, paused, or contention
//	case errors.Is(err, ErrKindPartialFailure): // outcome unknown, queued for reconcile
//	}
//
// # Error Handling
//
// Handlers test errors by kind:
//
//	if errors.Is(err, service.ErrKindNotFound) { ... }
package service
