package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDB captures Execute calls
type recordingDB struct {
	executed []string
	failOn   string
}

func (d *recordingDB) Connect(context.Context) error { return nil }
func (d *recordingDB) Close() error                  { return nil }
func (d *recordingDB) Ping(context.Context) error    { return nil }

func (d *recordingDB) Query(context.Context, string, map[string]interface{}) ([]interface{}, error) {
	return nil, nil
}

func (d *recordingDB) QueryOne(context.Context, string, map[string]interface{}) (interface{}, error) {
	return nil, nil
}

func (d *recordingDB) Execute(_ context.Context, query string, _ map[string]interface{}) error {
	if d.failOn != "" && query == d.failOn {
		return ErrQuery
	}
	d.executed = append(d.executed, query)
	return nil
}

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestReadMigrations_SortedAndFiltered(t *testing.T) {
	t.Parallel()

	dir := writeMigrations(t, map[string]string{
		"002_indexes.surql": "B",
		"001_schema.surql":  "A",
		"seed.surql":        "SEED",
		"README.md":         "docs",
	})

	migs, err := ReadMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, "001_schema.surql", migs[0].Name)
	assert.Equal(t, "A", migs[0].Source)
	assert.Equal(t, "002_indexes.surql", migs[1].Name)
}

func TestReadMigrations_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := ReadMigrations(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestFindMigrationsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := FindMigrationsDir(filepath.Join(dir, "nope"), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = FindMigrationsDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestMigrate_AppliesInOrder(t *testing.T) {
	t.Parallel()

	dir := writeMigrations(t, map[string]string{
		"001_schema.surql": "A",
		"002_more.surql":   "B",
	})
	db := &recordingDB{}

	applied, err := Migrate(context.Background(), db, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_schema.surql", "002_more.surql"}, applied)
	assert.Equal(t, []string{"A", "B"}, db.executed)
}

func TestMigrate_StopsAtFailure(t *testing.T) {
	t.Parallel()

	dir := writeMigrations(t, map[string]string{
		"001_schema.surql": "A",
		"002_bad.surql":    "BAD",
		"003_never.surql":  "C",
	})
	db := &recordingDB{failOn: "BAD"}

	applied, err := Migrate(context.Background(), db, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))
	assert.Contains(t, err.Error(), "002_bad.surql")
	assert.Equal(t, []string{"001_schema.surql"}, applied)
}
