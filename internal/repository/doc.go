// Package repository implements the data access layer for the PetzAdopt API.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles the records of one table.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Create, GetByID, Update, Delete, etc.)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # Ledger Writes
//
// LedgerRepository is the only writer of campaign.donated_amount. Every write
// is a single transaction that checks the campaign version it read and fails
// with database.ErrConflict when another write got there first.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax for security
//   - type::record() for safe ID handling
//   - time::now() for automatic timestamps
//
// # Example Usage
//
//	repo := NewPetRepository(db)
//	pet, err := repo.GetByID(ctx, "pet:abc123")
//	if err != nil {
//	    return err
//	}
//	if pet == nil {
//	    // Handle not found
//	}
package repository
