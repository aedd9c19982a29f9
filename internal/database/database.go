// Package database provides the database abstraction layer for PetzAdopt.
//
// This package defines the Database interface that abstracts SurrealDB operations,
// allowing for clean separation between business logic and data access.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// # Transactions
//
// Multi-document writes are sent as a single BEGIN/COMMIT block built with
// TxBuilder. A statement inside the block may abort the whole transaction
// with THROW; a THROW carrying ConflictMarker surfaces as ErrConflict so the
// caller can re-read and retry. See transaction.go.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique index violation
//   - ErrConflict: Conditional write lost a race
//   - ErrConnection: Transport failure, the outcome of a write is unknown
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrConflict) {
//	    // re-read and retry
//	}
package database

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique index violation (e.g., duplicate email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConflict indicates a conditional write found the record changed.
	ErrConflict = errors.New("write conflict")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")
)

// ConflictMarker is the text a transaction THROWs when its guard fails.
const ConflictMarker = "petzadopt: version conflict"

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string

	// TLS selects wss:// instead of ws://
	TLS bool
	// ConnectAttempts bounds Connect's retries; zero or one means a single try
	ConnectAttempts int
	// RetryDelay is the first pause between attempts, doubled after each
	// failure (default 500ms)
	RetryDelay time.Duration
}

// Endpoint is the websocket URL the driver dials
func (c Config) Endpoint() string {
	scheme := "ws"
	if c.TLS {
		scheme = "wss"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, c.Port)
}

// classify maps a driver or statement error message onto the standard errors.
// Commit conflicts between concurrent transactions are ErrConflict, the same
// as a failed version guard, so callers retry both.
func classify(err error, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, ConflictMarker),
		strings.Contains(lower, "can be retried"),
		strings.Contains(lower, "read or write conflict"),
		strings.Contains(lower, "resource busy"):
		return ErrConflict
	case strings.Contains(lower, "already contains"),
		strings.Contains(lower, "already exists"),
		strings.Contains(lower, "unique"):
		return ErrDuplicate
	}

	if err != nil {
		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, context.Canceled),
			errors.Is(err, io.EOF),
			errors.Is(err, net.ErrClosed),
			errors.As(err, &netErr):
			return ErrConnection
		}
	}
	if strings.Contains(lower, "connection") || strings.Contains(lower, "closed") {
		return ErrConnection
	}
	return ErrQuery
}
