package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brightline-ai/context-engine/internal/config"
)

// Open opens the configured database and applies pool settings.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.SQLite.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.SQLite.MaxOpenConns)
		}
		return db, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// migrations holds the schema DDL. Column types are kept to the subset both
// SQLite and Postgres accept.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		domain TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id),
		title TEXT NOT NULL,
		raw_content TEXT,
		summary TEXT,
		key_points TEXT,
		metadata TEXT,
		content_type TEXT,
		structured_data TEXT,
		intent_keywords TEXT,
		primary_products TEXT,
		confidence_score REAL NOT NULL DEFAULT 0,
		analyzed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_site ON documents(site_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_content_type ON documents(content_type)`,
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
