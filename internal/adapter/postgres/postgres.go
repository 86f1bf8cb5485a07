// Package postgres implements the meal repository on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meals (
			user_id TEXT NOT NULL,
			meal_id TEXT NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL,
			utc_offset INTEGER NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			image_key TEXT NOT NULL DEFAULT '',
			detected_foods JSONB NOT NULL DEFAULT '[]',
			nutrition JSONB NOT NULL DEFAULT '{}',
			insights JSONB NOT NULL DEFAULT '[]',
			micronutrients JSONB NOT NULL DEFAULT '[]',
			feeling SMALLINT CHECK (feeling BETWEEN 1 AND 5),
			symptoms JSONB NOT NULL DEFAULT '[]',
			feeling_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, meal_id)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_meals_user_captured_at ON meals(user_id, captured_at DESC);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
