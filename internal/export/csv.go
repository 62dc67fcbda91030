// Package export renders stored jobs and proposals as CSV downloads.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-funnel/internal/db"
	"github.com/jonathan/job-funnel/internal/types"
)

// Store is the subset of persistence the exporters read from.
type Store interface {
	ListFilteredJobs(ctx context.Context, limit, offset int) ([]types.FilteredJob, error)
	ListProposals(ctx context.Context, limit, offset int) ([]db.Proposal, error)
}

// exportPageSize bounds one export pass.
const exportPageSize = 5000

// WriteFilteredJobsCSV streams the filtered working set to w.
func WriteFilteredJobsCSV(ctx context.Context, store Store, w io.Writer) error {
	jobs, err := store.ListFilteredJobs(ctx, exportPageSize, 0)
	if err != nil {
		return fmt.Errorf("failed to load filtered jobs: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"url", "title", "source", "region", "posted_at", "budget", "proposals", "skills", "client_name", "client_rating", "created_at"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, j := range jobs {
		rec := []string{
			j.URL,
			j.Title,
			j.Source,
			j.Region,
			formatTimePtr(j.PostedAt),
			strconv.FormatFloat(j.Budget, 'f', -1, 64),
			formatIntPtr(j.Proposals),
			strings.Join(j.Skills, "; "),
			j.Client.Name,
			formatFloatPtr(j.Client.Rating),
			j.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteProposalsCSV streams stored proposals to w.
func WriteProposalsCSV(ctx context.Context, store Store, w io.Writer) error {
	proposals, err := store.ListProposals(ctx, exportPageSize, 0)
	if err != nil {
		return fmt.Errorf("failed to load proposals: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "job_url", "job_title", "model", "status", "proposal_text", "created_at"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range proposals {
		rec := []string{
			p.ID,
			p.JobURL,
			p.JobTitle,
			p.Model,
			p.Status,
			p.Text,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
