package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Migration is one schema file
type Migration struct {
	Name   string
	Source string
}

// ReadMigrations loads every .surql file in dir in file name order.
// seed.surql holds fixture data and is skipped.
func ReadMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, ".surql") && name != "seed.surql" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Name: name, Source: string(content)})
	}
	return migrations, nil
}

// FindMigrationsDir returns the first candidate directory that exists
func FindMigrationsDir(candidates ...string) (string, error) {
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("could not find migrations directory in %v", candidates)
}

// Migrate applies the migrations in dir. The schema statements are written
// with IF NOT EXISTS, so applying them again is harmless.
func Migrate(ctx context.Context, db Database, dir string) ([]string, error) {
	migrations, err := ReadMigrations(dir)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(migrations))
	for _, m := range migrations {
		if err := db.Execute(ctx, m.Source, nil); err != nil {
			return applied, fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		applied = append(applied, m.Name)
	}
	return applied, nil
}
