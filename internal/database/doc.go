// Package database provides database connectivity for the PetzAdopt API.
//
// The database package abstracts SurrealDB operations and provides
// a consistent interface for data access across the application.
//
// # Connection Management
//
// One SurrealDB handle is created at startup and injected everywhere:
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    Namespace: "petzadopt",
//	    Database:  "main",
//	    User:      "root",
//	    Password:  "secret",
//	})
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
//
// # Error Types
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique index violation
//   - ErrConflict: A THROW guard inside a transaction fired
//   - ErrConnection: Database unreachable, outcome of a write unknown
//   - ErrQuery: Anything else the server rejected
package database
