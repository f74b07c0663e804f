package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func files(m map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, body := range m {
		out[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("sqlite_master query failed: %v", err)
	}
	return count > 0
}

func TestApplyFromScratch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, files(map[string]string{
		"001_entries.sql": "CREATE TABLE entries (k TEXT PRIMARY KEY);",
		"002_index.sql":   "CREATE INDEX idx_entries_k ON entries(k);",
		"README.md":       "ignored",
	}))

	var logged []string
	applied, err := runner.Apply(ctx, func(msg string, _ ...interface{}) { logged = append(logged, msg) })
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if len(logged) == 0 {
		t.Error("expected progress to be logged")
	}
	if !tableExists(t, db, "entries") {
		t.Error("entries table missing after migration")
	}

	version, err := runner.CurrentVersion(ctx)
	if err != nil || version != 2 {
		t.Errorf("CurrentVersion() = %d, %v; want 2", version, err)
	}

	// Second run is a no-op.
	applied, err = runner.Apply(ctx, nil)
	if err != nil || applied != 0 {
		t.Errorf("second Apply() = %d, %v; want 0, nil", applied, err)
	}
}

func TestApplyIncremental(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	first := map[string]string{"001_a.sql": "CREATE TABLE a (id INTEGER);"}
	if _, err := NewRunner(db, files(first)).Apply(ctx, nil); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}

	first["002_b.sql"] = "CREATE TABLE b (id INTEGER);"
	applied, err := NewRunner(db, files(first)).Apply(ctx, nil)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 1 || !tableExists(t, db, "b") {
		t.Errorf("applied = %d, table b exists = %v", applied, tableExists(t, db, "b"))
	}
}

func TestApplyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, files(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE half (id INTEGER); THIS IS NOT SQL;",
	}))

	applied, err := runner.Apply(ctx, nil)
	if err == nil {
		t.Fatal("expected an error from the broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if version, _ := runner.CurrentVersion(ctx); version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if tableExists(t, db, "half") {
		t.Error("partial migration was not rolled back")
	}
}

func TestApplyRejectsNewerDatabase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	two := files(map[string]string{
		"001_a.sql": "CREATE TABLE a (id INTEGER);",
		"002_b.sql": "CREATE TABLE b (id INTEGER);",
	})
	if _, err := NewRunner(db, two).Apply(ctx, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	one := files(map[string]string{"001_a.sql": "CREATE TABLE a (id INTEGER);"})
	_, err := NewRunner(db, one).Apply(ctx, nil)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Apply() error = %v, want newer-schema error", err)
	}
}

func TestReadMigrationsValidation(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{name: "missing name", files: map[string]string{"001.sql": ""}, want: "invalid migration filename"},
		{name: "non-numeric", files: map[string]string{"abc_init.sql": ""}, want: "invalid version number"},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}, want: "at least 1"},
		{name: "duplicate", files: map[string]string{"001_a.sql": "", "01_b.sql": ""}, want: "duplicate migration version 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, files(tt.files)).ReadMigrations()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadMigrations() error = %v, want %q", err, tt.want)
			}
		})
	}
}
