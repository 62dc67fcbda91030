// Package db provides PostgreSQL persistence for jobs, scores, audit
// entries and feed status.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Pool exposes the underlying pool for components that manage their own
// queries (the config store).
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema is applied at startup. The unique index on url is what makes
// duplicate-insert races safe: the loser of a race sees a conflict and
// takes the update-last-seen path instead of erroring.
const schema = `
CREATE TABLE IF NOT EXISTS jobs_raw (
	id UUID PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	region TEXT,
	posted_at TIMESTAMPTZ,
	skills JSONB NOT NULL DEFAULT '[]',
	budget DOUBLE PRECISION NOT NULL,
	proposals INTEGER,
	client JSONB NOT NULL DEFAULT '{}',
	raw JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS jobs_filtered (
	id UUID PRIMARY KEY,
	raw_id UUID,
	url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	region TEXT,
	posted_at TIMESTAMPTZ,
	skills JSONB NOT NULL DEFAULT '[]',
	budget DOUBLE PRECISION NOT NULL,
	proposals INTEGER,
	client JSONB NOT NULL DEFAULT '{}',
	filter_reasons JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS job_scores (
	id UUID PRIMARY KEY,
	job_url TEXT NOT NULL,
	job_id TEXT,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS job_scores_url_idx ON job_scores (job_url, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
	id UUID PRIMARY KEY,
	action TEXT NOT NULL,
	entity TEXT,
	entity_id TEXT,
	actor TEXT,
	data JSONB NOT NULL DEFAULT '{}',
	ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS feed_status (
	source TEXT PRIMARY KEY,
	last_fetch_at TIMESTAMPTZ,
	last_successful_fetch_at TIMESTAMPTZ,
	error_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	last_new_jobs INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS config_docs (
	key TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS prompt_templates (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	template TEXT NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS proposals (
	id UUID PRIMARY KEY,
	job_url TEXT NOT NULL,
	job_title TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'generated',
	proposal_text TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies the schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
