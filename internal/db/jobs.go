package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-funnel/internal/types"
)

// UpsertResult reports how an upsert-by-url landed.
type UpsertResult struct {
	ID       string
	Inserted bool // false when the URL already existed and the row was refreshed
}

// UpsertRawJob inserts a job keyed by URL. On a duplicate URL the row's
// last_seen_at is refreshed and the mutable fields (skills, budget,
// proposals, client, raw) are overwritten; created_at is never touched.
// A duplicate-insert race resolves through the same conflict path, so
// concurrent ingestion of the same URL cannot error or double-insert.
func (db *DB) UpsertRawJob(ctx context.Context, job *types.CanonicalJob) (UpsertResult, error) {
	skills, client, raw, err := encodeJobFields(job)
	if err != nil {
		return UpsertResult{}, err
	}

	var (
		id       string
		inserted bool
	)
	// xmax = 0 distinguishes a fresh insert from a conflict update.
	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs_raw (id, url, title, description, source, region, posted_at, skills, budget, proposals, client, raw)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (url) DO UPDATE SET
			skills = $8, budget = $9, proposals = $10, client = $11, raw = $12,
			updated_at = NOW(), last_seen_at = NOW()
		 RETURNING id::text, (xmax = 0)`,
		uuid.NewString(), job.URL, job.Title, job.Description, job.Source, job.Region,
		job.PostedAt, skills, job.Budget, job.Proposals, client, raw,
	).Scan(&id, &inserted)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to upsert raw job: %w", err)
	}
	return UpsertResult{ID: id, Inserted: inserted}, nil
}

// UpsertFilteredJob inserts or refreshes a job in the filtered working set.
func (db *DB) UpsertFilteredJob(ctx context.Context, job *types.CanonicalJob, rawID string, reasons []string) (UpsertResult, error) {
	skills, client, _, err := encodeJobFields(job)
	if err != nil {
		return UpsertResult{}, err
	}
	reasonsJSON, err := json.Marshal(emptyIfNil(reasons))
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to marshal filter reasons: %w", err)
	}

	var (
		id       string
		inserted bool
	)
	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs_filtered (id, raw_id, url, title, description, source, region, posted_at, skills, budget, proposals, client, filter_reasons)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (url) DO UPDATE SET
			raw_id = $2, skills = $9, budget = $10, proposals = $11, client = $12,
			filter_reasons = $13, updated_at = NOW()
		 RETURNING id::text, (xmax = 0)`,
		uuid.NewString(), rawID, job.URL, job.Title, job.Description, job.Source, job.Region,
		job.PostedAt, skills, job.Budget, job.Proposals, client, reasonsJSON,
	).Scan(&id, &inserted)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to upsert filtered job: %w", err)
	}
	return UpsertResult{ID: id, Inserted: inserted}, nil
}

// GetRawJobByURL retrieves a stored job by its normalized URL. Returns nil
// when no row exists.
func (db *DB) GetRawJobByURL(ctx context.Context, url string) (*types.StoredJob, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, url, title, description, source, COALESCE(region, ''), posted_at,
		        skills, budget, proposals, client, created_at, updated_at, last_seen_at
		 FROM jobs_raw WHERE url = $1`, url)
	return scanStoredJob(row)
}

// GetRawJobByID retrieves a stored job by row id. Returns nil when no row
// exists.
func (db *DB) GetRawJobByID(ctx context.Context, id string) (*types.StoredJob, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, url, title, description, source, COALESCE(region, ''), posted_at,
		        skills, budget, proposals, client, created_at, updated_at, last_seen_at
		 FROM jobs_raw WHERE id = $1`, id)
	return scanStoredJob(row)
}

// ListRawJobs returns stored jobs newest-first.
func (db *DB) ListRawJobs(ctx context.Context, limit, offset int) ([]types.StoredJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, url, title, description, source, COALESCE(region, ''), posted_at,
		        skills, budget, proposals, client, created_at, updated_at, last_seen_at
		 FROM jobs_raw ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw jobs: %w", err)
	}
	defer rows.Close()

	var out []types.StoredJob
	for rows.Next() {
		job, err := scanStoredJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

// ListFilteredJobs returns admitted jobs, most recently posted first.
func (db *DB) ListFilteredJobs(ctx context.Context, limit, offset int) ([]types.FilteredJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, COALESCE(raw_id::text, ''), url, title, description, source, COALESCE(region, ''),
		        posted_at, skills, budget, proposals, client, filter_reasons, created_at, updated_at
		 FROM jobs_filtered ORDER BY posted_at DESC NULLS LAST, created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list filtered jobs: %w", err)
	}
	defer rows.Close()

	var out []types.FilteredJob
	for rows.Next() {
		var (
			j                      types.FilteredJob
			skillsJSON, clientJSON []byte
			reasonsJSON            []byte
			postedAt               *time.Time
		)
		if err := rows.Scan(&j.ID, &j.RawID, &j.URL, &j.Title, &j.Description, &j.Source, &j.Region,
			&postedAt, &skillsJSON, &j.Budget, &j.Proposals, &clientJSON, &reasonsJSON,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan filtered job: %w", err)
		}
		j.PostedAt = postedAt
		_ = json.Unmarshal(skillsJSON, &j.Skills)
		_ = json.Unmarshal(clientJSON, &j.Client)
		_ = json.Unmarshal(reasonsJSON, &j.FilterReasons)
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetFilteredJobByURL retrieves an admitted job by URL. Returns nil when
// absent.
func (db *DB) GetFilteredJobByURL(ctx context.Context, url string) (*types.FilteredJob, error) {
	var (
		j                      types.FilteredJob
		skillsJSON, clientJSON []byte
		reasonsJSON            []byte
		postedAt               *time.Time
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, COALESCE(raw_id::text, ''), url, title, description, source, COALESCE(region, ''),
		        posted_at, skills, budget, proposals, client, filter_reasons, created_at, updated_at
		 FROM jobs_filtered WHERE url = $1`, url,
	).Scan(&j.ID, &j.RawID, &j.URL, &j.Title, &j.Description, &j.Source, &j.Region,
		&postedAt, &skillsJSON, &j.Budget, &j.Proposals, &clientJSON, &reasonsJSON,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get filtered job: %w", err)
	}
	j.PostedAt = postedAt
	_ = json.Unmarshal(skillsJSON, &j.Skills)
	_ = json.Unmarshal(clientJSON, &j.Client)
	_ = json.Unmarshal(reasonsJSON, &j.FilterReasons)
	return &j, nil
}

// PurgeStaleRawJobs deletes raw jobs not seen since the cutoff. Returns the
// number of rows removed.
func (db *DB) PurgeStaleRawJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs_raw WHERE last_seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredJob(row rowScanner) (*types.StoredJob, error) {
	var (
		j                      types.StoredJob
		skillsJSON, clientJSON []byte
		postedAt               *time.Time
	)
	err := row.Scan(&j.ID, &j.URL, &j.Title, &j.Description, &j.Source, &j.Region, &postedAt,
		&skillsJSON, &j.Budget, &j.Proposals, &clientJSON, &j.CreatedAt, &j.UpdatedAt, &j.LastSeenAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	j.PostedAt = postedAt
	_ = json.Unmarshal(skillsJSON, &j.Skills)
	_ = json.Unmarshal(clientJSON, &j.Client)
	return &j, nil
}

func encodeJobFields(job *types.CanonicalJob) (skills, client, raw []byte, err error) {
	skills, err = json.Marshal(emptyIfNil(job.Skills))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	client, err = json.Marshal(job.Client)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal client: %w", err)
	}
	if job.Raw != nil {
		raw, err = json.Marshal(job.Raw)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal raw payload: %w", err)
		}
	}
	return skills, client, raw, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
