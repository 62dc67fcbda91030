// Package types provides type definitions for structured data used throughout the job-funnel system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"
)

// ClientInfo holds the client metadata extracted from a feed payload.
// Sub-fields absent from the source are left nil rather than defaulted,
// so rule evaluation can distinguish "unknown" from "zero".
type ClientInfo struct {
	Name            string   `json:"name"`
	PaymentVerified *bool    `json:"payment_verified,omitempty"`
	PhoneVerified   *bool    `json:"phone_verified,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	Reviews         *int     `json:"reviews,omitempty"`
	TotalSpent      *float64 `json:"total_spent,omitempty"`
	HiringRate      *float64 `json:"hiring_rate,omitempty"`
}

// CanonicalJob is the normalized representation of one job posting.
// It is only constructed when title, url, client name and budget are all
// present and valid; it is immutable once built.
type CanonicalJob struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	Region      string         `json:"region,omitempty"`
	PostedAt    *time.Time     `json:"posted_at,omitempty"`
	Skills      []string       `json:"skills"`
	Budget      float64        `json:"budget"`
	Proposals   *int           `json:"proposals,omitempty"`
	Client      ClientInfo     `json:"client"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// RulePayload converts the job into the nested map the rule engine
// evaluates dot-paths against. The shape mirrors the stored document:
// job fields at the top of "job", client fields under "client".
func (j *CanonicalJob) RulePayload() map[string]any {
	client := map[string]any{"name": j.Client.Name}
	if j.Client.PaymentVerified != nil {
		client["payment_verified"] = *j.Client.PaymentVerified
	}
	if j.Client.PhoneVerified != nil {
		client["phone_verified"] = *j.Client.PhoneVerified
	}
	if j.Client.Rating != nil {
		client["rating"] = *j.Client.Rating
	}
	if j.Client.Reviews != nil {
		client["reviews"] = float64(*j.Client.Reviews)
	}
	if j.Client.TotalSpent != nil {
		client["total_spent"] = *j.Client.TotalSpent
	}
	if j.Client.HiringRate != nil {
		client["hiring_rate"] = *j.Client.HiringRate
	}

	job := map[string]any{
		"title":       j.Title,
		"url":         j.URL,
		"description": j.Description,
		"source":      j.Source,
		"budget":      j.Budget,
		"skills":      j.Skills,
		"client":      client,
	}
	if j.Region != "" {
		job["region"] = j.Region
	}
	if j.Proposals != nil {
		job["proposals"] = float64(*j.Proposals)
	}
	if j.PostedAt != nil {
		job["posted_at"] = j.PostedAt.UTC().Format(time.RFC3339)
	}

	return map[string]any{"job": job, "client": client}
}

// StoredJob is a CanonicalJob as persisted, with bookkeeping columns.
type StoredJob struct {
	ID string `json:"id"`
	CanonicalJob
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// FilteredJob is a job that passed the admission gate.
type FilteredJob struct {
	ID    string `json:"id"`
	RawID string `json:"raw_id"`
	CanonicalJob
	FilterReasons []string  `json:"filter_reasons"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
