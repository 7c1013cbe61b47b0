package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	dbInstance *sql.DB
	dbOnce     sync.Once
	dbErr      error
)

// GetDB opens the process-wide database on first use. Later calls return the
// same handle regardless of path.
func GetDB(ctx context.Context, path string) (*sql.DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = Open(ctx, path)
	})
	return dbInstance, dbErr
}

// Open connects to a DuckDB file, or an in-memory database when path is
// empty, and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// An in-memory database lives inside one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DuckDB: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS partners (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		nickname VARCHAR NOT NULL,
		color_tag VARCHAR,
		notes VARCHAR,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		activity_mode VARCHAR NOT NULL,
		partner_id VARCHAR,
		activity_date DATE NOT NULL,
		duration_minutes INTEGER NOT NULL,
		satisfaction_score DOUBLE NOT NULL,
		emotion_tags VARCHAR NOT NULL DEFAULT '[]',
		note VARCHAR,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_date ON activities (user_id, activity_date)`,
	`CREATE INDEX IF NOT EXISTS idx_partners_user ON partners (user_id)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
