package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

func TestMigratorUpDownRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrator.db")
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	m, err := NewMigrator(sqlDB)
	if err != nil {
		t.Fatalf("create migrator: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("migrate up: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if dirty {
		t.Error("expected a clean migration state after up")
	}
	if version == 0 {
		t.Error("expected a non-zero schema version after up")
	}

	if !tableExists(t, sqlDB, "busy_date_ranges") {
		t.Error("expected busy_date_ranges table after up")
	}

	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("migrate down: %v", err)
	}
	if tableExists(t, sqlDB, "busy_date_ranges") {
		t.Error("expected busy_date_ranges table to be dropped after down")
	}
}

func tableExists(t *testing.T, sqlDB *sql.DB, table string) bool {
	t.Helper()

	var name string
	err := sqlDB.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
		table,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("query table %q existence: %v", table, err)
	}
	return true
}
