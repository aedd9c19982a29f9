package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealDB is the Database backed by surrealdb.go over a websocket
type SurrealDB struct {
	mu     sync.RWMutex
	db     *surrealdb.DB
	config Config
}

// NewSurrealDB returns an unconnected client; call Connect before use
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{config: cfg}
}

// Connect dials, signs in and selects the namespace. Failed attempts are
// retried up to ConnectAttempts with doubling delays, so the server can
// start before the database is ready.
func (s *SurrealDB) Connect(ctx context.Context) error {
	attempts := max(s.config.ConnectAttempts, 1)
	delay := s.config.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var err error
	for attempt := 1; ; attempt++ {
		var db *surrealdb.DB
		if db, err = s.open(ctx); err == nil {
			s.mu.Lock()
			s.db = db
			s.mu.Unlock()
			return nil
		}
		if attempt == attempts {
			return err
		}

		slog.WarnContext(ctx, "database not ready, retrying",
			slog.String("endpoint", s.config.Endpoint()),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrConnection, ctx.Err())
		}
	}
}

func (s *SurrealDB) open(ctx context.Context) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, s.config.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if _, err := db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}
	return db, nil
}

func (s *SurrealDB) conn() (*surrealdb.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrConnection
	}
	return s.db, nil
}

// Close disconnects; later calls fail with ErrConnection
func (s *SurrealDB) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close(context.Background())
}

// Ping checks the database connection
func (s *SurrealDB) Ping(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query executes a query and returns one {status, result} entry per statement.
// A failed statement anywhere in the batch fails the call; inside a
// transaction every statement reports an error, so all messages are checked
// for the conflict marker.
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	results, err := surrealdb.Query[interface{}](ctx, db, query, vars)
	if err != nil && results == nil {
		return nil, fmt.Errorf("%w: %v", classify(err, err.Error()), err)
	}
	if results == nil {
		return nil, nil
	}

	var failures []string
	output := make([]interface{}, 0, len(*results))
	for _, r := range *results {
		if r.Status != "OK" {
			msg := r.Status
			if r.Error != nil {
				msg = r.Error.Message
			}
			failures = append(failures, msg)
			continue
		}
		output = append(output, map[string]interface{}{
			"status": r.Status,
			"result": r.Result,
		})
	}
	if err != nil {
		failures = append(failures, err.Error())
	}

	if len(failures) > 0 {
		joined := strings.Join(failures, "; ")
		return nil, fmt.Errorf("%w: %s", classify(err, joined), joined)
	}

	return output, nil
}

// QueryOne executes a query and returns a single result
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}

	// Unwrap the response wrapper {status: "OK", result: [...]}
	first := results[0]
	if resp, ok := first.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, ErrNotFound
				}
				return resultData[0], nil
			}
			// Scalar result (e.g. RETURN statements)
			return resp["result"], nil
		}
	}

	return first, nil
}

// Execute runs a query without returning results
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}
