package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_records.sql", "CREATE TABLE b ();")
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE a ();")
	writeMigration(t, dir, "010_later.sql", "CREATE TABLE c ();")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	want := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != want[i] {
			t.Errorf("migration %d: version = %d, want %d", i, mig.Version, want[i])
		}
	}
}

func TestLoadMigrations_SkipsNonMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE a ();")
	writeMigration(t, dir, "README.md", "not a migration")
	writeMigration(t, dir, "notes.sql", "no numeric prefix")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("unexpected migration %q", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, filepath.Join(t.TempDir(), "missing"))
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
