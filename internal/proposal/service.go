// Package proposal generates proposal drafts for admitted jobs. The
// service is fail-closed: generation refuses to run unless AI settings
// and a prompt template are fully configured, so a half-configured
// deployment can never silently call the model with guessed parameters.
package proposal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"text/template"

	"github.com/jonathan/job-funnel/internal/configstore"
	"github.com/jonathan/job-funnel/internal/llm"
	"github.com/jonathan/job-funnel/internal/types"
)

var (
	// ErrAISettingsMissing means ai settings are absent or lack one of
	// model, temperature, max_tokens.
	ErrAISettingsMissing = errors.New("ai settings missing required fields (model/temperature/max_tokens)")
	// ErrNoTemplate means no prompt template matched the request and no
	// default template exists.
	ErrNoTemplate = errors.New("no prompt template configured")
	// ErrJobNotFound means the request referenced a job not in the
	// filtered working set.
	ErrJobNotFound = errors.New("job not found")
)

// JobStore resolves jobs and persists generated drafts.
type JobStore interface {
	GetFilteredJobByURL(ctx context.Context, url string) (*types.FilteredJob, error)
	InsertProposal(ctx context.Context, jobURL, jobTitle, model, text string) (string, error)
}

// Service renders a stored prompt template against a job and asks the
// LLM for a draft.
type Service struct {
	cfg   configstore.Provider
	store JobStore
	llm   llm.Client
}

// New creates a proposal service.
func New(cfg configstore.Provider, store JobStore, client llm.Client) *Service {
	return &Service{cfg: cfg, store: store, llm: client}
}

// Result is the outcome of one generation.
type Result struct {
	ProposalID string `json:"proposal_id"`
	Status     string `json:"status"`
	Model      string `json:"model"`
	Text       string `json:"proposal_text"`
}

// Generate produces and persists a proposal draft for the job at jobURL.
// templateID selects a stored prompt template; empty means the default.
func (s *Service) Generate(ctx context.Context, jobURL, templateID string) (*Result, error) {
	job, err := s.store.GetFilteredJobByURL(ctx, jobURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	tmpl, err := s.cfg.PromptTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt template: %w", err)
	}
	if tmpl == nil {
		return nil, ErrNoTemplate
	}

	opts, err := s.resolveOptions(ctx)
	if err != nil {
		return nil, err
	}

	prompt, err := renderPrompt(tmpl.Template, job)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt template %q: %w", tmpl.Name, err)
	}

	text, err := s.llm.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	id, err := s.store.InsertProposal(ctx, job.URL, job.Title, opts.Model, text)
	if err != nil {
		return nil, fmt.Errorf("failed to store proposal: %w", err)
	}

	log.Printf("generated proposal %s for %s (model=%s)", id, job.URL, opts.Model)
	return &Result{ProposalID: id, Status: "generated", Model: opts.Model, Text: text}, nil
}

// resolveOptions loads AI settings and rejects partial configuration.
func (s *Service) resolveOptions(ctx context.Context) (llm.Options, error) {
	ai, err := s.cfg.AISettings(ctx)
	if err != nil {
		return llm.Options{}, fmt.Errorf("failed to load ai settings: %w", err)
	}
	if ai == nil || ai.Model == "" || ai.Temperature == nil || ai.MaxTokens == nil {
		return llm.Options{}, ErrAISettingsMissing
	}
	return llm.Options{
		Model:       ai.Model,
		Temperature: *ai.Temperature,
		MaxTokens:   *ai.MaxTokens,
	}, nil
}

// renderPrompt executes the stored template against the job. Templates
// reference fields as {{.Job.Title}}, {{.Job.Description}} and so on;
// template content is operator-controlled, nothing is hard-coded here.
func renderPrompt(text string, job *types.FilteredJob) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := map[string]any{"Job": job, "Client": job.Client}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
