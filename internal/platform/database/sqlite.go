package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"                      // local files and :memory:
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql:// (Turso)
	"shortr/internal/platform/config"
)

// Open connects to the link store. libsql:// URLs go to Turso, anything else
// is treated as a local SQLite file.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	driver, dsn := resolveDSN(cfg)
	if driver == "sqlite3" {
		if err := ensureDir(dsn); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return db, nil
}

// ensureDir creates the parent directory of a local database file; the
// sqlite driver does not.
func ensureDir(dsn string) error {
	path, query, _ := strings.Cut(dsn, "?")
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.Contains(query, "mode=memory") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}

func resolveDSN(cfg config.DatabaseConfig) (driver, dsn string) {
	if strings.HasPrefix(cfg.URL, "libsql://") {
		dsn = cfg.URL
		if cfg.AuthToken != "" {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "authToken=" + cfg.AuthToken
		}
		return "libsql", dsn
	}

	// For local files, strip "file:" and keep foreign keys on
	dsn = strings.TrimPrefix(cfg.URL, "file:")
	if dsn == "" {
		dsn = ":memory:"
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}
	return "sqlite3", dsn
}
