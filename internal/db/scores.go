package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-funnel/internal/types"
)

// ScoreRecord is one appended scoring outcome for a job.
type ScoreRecord struct {
	ID        string            `json:"id"`
	JobURL    string            `json:"job_url"`
	JobID     string            `json:"job_id,omitempty"`
	Result    types.ScoreResult `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

// InsertScore appends a scoring outcome. Scores are never updated in
// place; each evaluation of a job adds a new row.
func (db *DB) InsertScore(ctx context.Context, jobURL, jobID string, result *types.ScoreResult) (string, error) {
	doc, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal score result: %w", err)
	}

	id := uuid.NewString()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO job_scores (id, job_url, job_id, result) VALUES ($1, $2, NULLIF($3, ''), $4)`,
		id, jobURL, jobID, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert score: %w", err)
	}
	return id, nil
}

// ListScores returns the score history for a job URL, newest first.
func (db *DB) ListScores(ctx context.Context, jobURL string, limit int) ([]ScoreRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_url, COALESCE(job_id, ''), result, created_at
		 FROM job_scores WHERE job_url = $1 ORDER BY created_at DESC LIMIT $2`,
		jobURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRecord
	for rows.Next() {
		var (
			rec ScoreRecord
			doc []byte
		)
		if err := rows.Scan(&rec.ID, &rec.JobURL, &rec.JobID, &doc, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if err := json.Unmarshal(doc, &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to decode score result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
