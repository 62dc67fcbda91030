package db

import (
	"context"
	"fmt"
	"time"
)

// FeedStatus tracks the health of one ingestion source.
type FeedStatus struct {
	Source                string     `json:"source"`
	LastFetchAt           *time.Time `json:"last_fetch_at,omitempty"`
	LastSuccessfulFetchAt *time.Time `json:"last_successful_fetch_at,omitempty"`
	ErrorCount            int        `json:"error_count"`
	LastError             string     `json:"last_error,omitempty"`
	LastNewJobs           int        `json:"last_new_jobs"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// RecordFeedSuccess marks a successful batch from a source, resetting its
// error count.
func (db *DB) RecordFeedSuccess(ctx context.Context, source string, newJobs int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO feed_status (source, last_fetch_at, last_successful_fetch_at, error_count, last_error, last_new_jobs, updated_at)
		 VALUES ($1, NOW(), NOW(), 0, NULL, $2, NOW())
		 ON CONFLICT (source) DO UPDATE SET
			last_fetch_at = NOW(), last_successful_fetch_at = NOW(),
			error_count = 0, last_error = NULL, last_new_jobs = $2, updated_at = NOW()`,
		source, newJobs)
	if err != nil {
		return fmt.Errorf("failed to record feed success: %w", err)
	}
	return nil
}

// RecordFeedError marks a failed batch from a source and bumps its error
// count.
func (db *DB) RecordFeedError(ctx context.Context, source, errMsg string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO feed_status (source, last_fetch_at, error_count, last_error, updated_at)
		 VALUES ($1, NOW(), 1, $2, NOW())
		 ON CONFLICT (source) DO UPDATE SET
			last_fetch_at = NOW(), error_count = feed_status.error_count + 1,
			last_error = $2, updated_at = NOW()`,
		source, errMsg)
	if err != nil {
		return fmt.Errorf("failed to record feed error: %w", err)
	}
	return nil
}

// ListFeedStatus returns the status of all known sources.
func (db *DB) ListFeedStatus(ctx context.Context) ([]FeedStatus, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT source, last_fetch_at, last_successful_fetch_at, error_count, COALESCE(last_error, ''), last_new_jobs, updated_at
		 FROM feed_status ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed status: %w", err)
	}
	defer rows.Close()

	var out []FeedStatus
	for rows.Next() {
		var fs FeedStatus
		if err := rows.Scan(&fs.Source, &fs.LastFetchAt, &fs.LastSuccessfulFetchAt,
			&fs.ErrorCount, &fs.LastError, &fs.LastNewJobs, &fs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feed status: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}
