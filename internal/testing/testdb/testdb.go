package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgo/petzadopt/internal/database"
)

// TestDB is a migrated database in a namespace of its own
type TestDB struct {
	DB        database.Database
	Namespace string

	t         *testing.T
	closeOnce sync.Once
}

var (
	schemaOnce sync.Once
	schema     []database.Migration
	schemaErr  error

	namespaceSeq atomic.Int64
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func config() database.Config {
	return database.Config{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "8000"),
		User:     envOr("TEST_DB_USER", "root"),
		Password: envOr("TEST_DB_PASSWORD", "root"),
		Database: "test",
	}
}

// loadSchema finds migrations/ by walking up from the test's package
// directory, or under PETZADOPT_ROOT when set
func loadSchema() ([]database.Migration, error) {
	schemaOnce.Do(func() {
		var candidates []string
		if root := os.Getenv("PETZADOPT_ROOT"); root != "" {
			candidates = append(candidates, filepath.Join(root, "migrations"))
		}
		dir := "."
		for i := 0; i < 5; i++ {
			candidates = append(candidates, filepath.Join(dir, "migrations"))
			dir = filepath.Join(dir, "..")
		}

		found, err := database.FindMigrationsDir(candidates...)
		if err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = database.ReadMigrations(found)
	})
	return schema, schemaErr
}

// New connects to the test SurrealDB, creates a fresh namespace and applies
// the schema. The test is skipped when no database is reachable. The
// namespace is removed when the test ends; Close does it earlier.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config()
	cfg.Namespace = fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), namespaceSeq.Add(1))

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Skipf("testdb: SurrealDB not reachable at %s:%s: %v", cfg.Host, cfg.Port, err)
	}

	tdb := &TestDB{DB: db, Namespace: cfg.Namespace, t: t}
	t.Cleanup(tdb.Close)

	migrations, err := loadSchema()
	if err != nil {
		t.Fatalf("testdb: loading migrations: %v", err)
	}
	for _, m := range migrations {
		if err := db.Execute(ctx, m.Source, nil); err != nil {
			t.Fatalf("testdb: migration %s: %v", m.Name, err)
		}
	}

	return tdb
}

// Close removes the namespace and disconnects. Safe to call more than once.
func (tdb *TestDB) Close() {
	tdb.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = tdb.DB.Execute(ctx, "REMOVE NAMESPACE "+tdb.Namespace, nil)
		_ = tdb.DB.Close()
	})
}

// Ctx returns a context bounded by the test's lifetime and ten seconds
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(tdb.t.Context(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec runs a statement and fails the test on error
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}
