package database

import (
	"os"
	"path/filepath"
	"testing"

	"shortr/internal/platform/config"
)

func TestResolveDSN(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.DatabaseConfig
		wantDriver string
		wantDSN    string
	}{
		{
			name:       "Local File",
			cfg:        config.DatabaseConfig{URL: "file:data/shortr.db"},
			wantDriver: "sqlite3",
			wantDSN:    "data/shortr.db?_foreign_keys=on",
		},
		{
			name:       "Memory",
			cfg:        config.DatabaseConfig{URL: ""},
			wantDriver: "sqlite3",
			wantDSN:    ":memory:?_foreign_keys=on",
		},
		{
			name:       "Turso With Token",
			cfg:        config.DatabaseConfig{URL: "libsql://links.turso.io", AuthToken: "tok"},
			wantDriver: "libsql",
			wantDSN:    "libsql://links.turso.io?authToken=tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn := resolveDSN(tt.cfg)
			if driver != tt.wantDriver || dsn != tt.wantDSN {
				t.Errorf("resolveDSN() = %s, %s; want %s, %s", driver, dsn, tt.wantDriver, tt.wantDSN)
			}
		})
	}
}

func TestOpen_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "shortr.db")

	db, err := Open(config.DatabaseConfig{URL: "file:" + path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected database file at %s: %v", path, err)
	}
}

func TestEnsureDir_SkipsMemory(t *testing.T) {
	for _, dsn := range []string{":memory:?_foreign_keys=on", "shared.db?mode=memory&cache=shared"} {
		if err := ensureDir(dsn); err != nil {
			t.Errorf("ensureDir(%q) error = %v", dsn, err)
		}
	}
}

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(config.DatabaseConfig{URL: "file:" + path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// Twice, migrations must be idempotent
	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+1, err)
		}
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('links', 'clicks')").Scan(&n); err != nil {
		t.Fatalf("Failed to inspect schema: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 tables, got %d", n)
	}

	applied, err := Applied(db)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(applied) != 1 || applied[0] != "001_links.sql" {
		t.Errorf("Expected 001_links.sql to be recorded once, got %v", applied)
	}
}
