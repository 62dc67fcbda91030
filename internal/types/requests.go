package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// IngestItem is one pre-normalized job submitted to POST /ingest/jobs.
// Feed converters and the payload normalizer both produce this shape.
// All fields are optional here: item-level requirements (title, url,
// client name, budget) are enforced per item during normalization, so
// one incomplete item never rejects the whole batch.
type IngestItem struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	ClientName  string         `json:"client_name"`
	Budget      *float64       `json:"budget"`
	Description string         `json:"description,omitempty"`
	Source      string         `json:"source,omitempty"`
	Region      string         `json:"region,omitempty"`
	PostedAt    *time.Time     `json:"posted_at,omitempty"`
	Skills      []string       `json:"skills,omitempty"`
	Proposals   *int           `json:"proposals,omitempty"`
	Client      map[string]any `json:"client,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// IngestRequest is the body of POST /ingest/jobs.
type IngestRequest struct {
	Items []IngestItem `json:"items" validate:"required,min=1"`
}

// Validate validates the IngestRequest using the validator.
func (r *IngestRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// IngestResponse is the batch-level summary returned by the ingestion
// endpoints. Per-item failures never fail the batch; they land in Errors.
type IngestResponse struct {
	Received    int      `json:"received"`
	Accepted    int      `json:"accepted"`
	Filtered    int      `json:"filtered"`
	Deduped     int      `json:"deduped"`
	TestSkipped int      `json:"test_skipped"`
	Errors      []string `json:"errors,omitempty"`
}

// ScoreRequest identifies the job to score, by URL or stored ID.
type ScoreRequest struct {
	JobURL string `json:"job_url,omitempty"`
	JobID  string `json:"job_id,omitempty"`
}

// ProposalRequest is the body of POST /proposals/generate.
type ProposalRequest struct {
	JobURL     string `json:"job_url,omitempty"`
	JobID      string `json:"job_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
	Tone       string `json:"tone,omitempty"`
}

// LoginRequest is the operator login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// LoginResponse carries the issued operator token.
type LoginResponse struct {
	Token string `json:"token"`
}
