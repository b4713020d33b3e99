package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaStatements crea las tablas si no existen. dimension es el tamaño del catálogo (N).
func SchemaStatements(dimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS response_records (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			identity TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			score SMALLINT NOT NULL CHECK (score BETWEEN 1 AND 5),
			answered_at TIMESTAMPTZ NOT NULL
		)`,
		`ALTER TABLE response_records ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
		`CREATE INDEX IF NOT EXISTS response_records_identity_idx ON response_records (identity, answered_at, seq)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			identity TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			responses JSONB NOT NULL,
			belief_vector vector(%d) NOT NULL,
			clan_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, dimension),
	}
}

// EnsureSchema aplica SchemaStatements en orden.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	for _, stmt := range SchemaStatements(dimension) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
