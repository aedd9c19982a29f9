// Package model defines domain entities and data structures for the PetzAdopt API.
//
// The model package contains struct definitions for domain objects, request
// types with their validation, and the RFC 9457 error type. Models are used
// across all layers of the application.
//
// # Domain Entities
//
//   - Pet: a listing offered for adoption
//   - AdoptionRequest: an adopter's claim on a pet, pending owner acceptance
//   - User: an account with a role (user, admin) and a role-request status
//   - Campaign: a fundraising effort for one pet with a running donated total
//   - Payment: one charge credited to a campaign
//
// # Money
//
// Every amount is an Amount, a fixed-point decimal carried as a string with
// two fraction digits:
//
//	a := model.MustParseAmount("50.00")
//	total := a.Add(model.MustParseAmount("25.50")) // "75.50"
//
// # Record IDs
//
// Ids are SurrealDB record ids ("campaign:abc"). NormalizeRecordID accepts the
// bare key too and rejects ids that belong to another table.
package model
