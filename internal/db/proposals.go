package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Proposal is a generated proposal draft persisted for review.
type Proposal struct {
	ID        string    `json:"id"`
	JobURL    string    `json:"job_url"`
	JobTitle  string    `json:"job_title"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	Text      string    `json:"proposal_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsertProposal stores a freshly generated proposal and returns its id.
func (db *DB) InsertProposal(ctx context.Context, jobURL, jobTitle, model, text string) (string, error) {
	id := uuid.NewString()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO proposals (id, job_url, job_title, model, proposal_text) VALUES ($1, $2, $3, $4, $5)`,
		id, jobURL, jobTitle, model, text)
	if err != nil {
		return "", fmt.Errorf("failed to insert proposal: %w", err)
	}
	return id, nil
}

// GetProposal retrieves a proposal by id. Returns nil when absent.
func (db *DB) GetProposal(ctx context.Context, id string) (*Proposal, error) {
	var p Proposal
	err := db.pool.QueryRow(ctx,
		`SELECT id, job_url, job_title, model, status, proposal_text, created_at, updated_at
		 FROM proposals WHERE id = $1`, id,
	).Scan(&p.ID, &p.JobURL, &p.JobTitle, &p.Model, &p.Status, &p.Text, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return &p, nil
}

// ListProposals returns proposals newest-first.
func (db *DB) ListProposals(ctx context.Context, limit, offset int) ([]Proposal, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_url, job_title, model, status, proposal_text, created_at, updated_at
		 FROM proposals ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		var p Proposal
		if err := rows.Scan(&p.ID, &p.JobURL, &p.JobTitle, &p.Model, &p.Status, &p.Text,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProposalStatus moves a proposal through its review lifecycle.
func (db *DB) UpdateProposalStatus(ctx context.Context, id, status string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("proposal %s not found", id)
	}
	return nil
}
