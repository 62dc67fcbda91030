// Package normalize turns raw webhook payloads into canonical job records.
// It locates the job array regardless of wrapping convention, runs every
// item through the field extractor, and validates required fields. Per-item
// failures never abort the batch; a payload with no recognizable job array
// at all is a structural error.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/job-funnel/internal/extract"
	"github.com/jonathan/job-funnel/internal/types"
)

// ErrNoJobsArray is returned when no known container key holds a job array
// and the payload itself does not look like a single job object.
var ErrNoJobsArray = errors.New("payload contains no recognizable jobs array")

// containerKeys are probed in order for the wrapped-array conventions feeds
// use. Dotted entries address one level of nesting.
var containerKeys = []string{"jobs", "data", "items", "data.jobs", "results.jobs", "searchResults.jobs"}

// Report summarizes one normalization pass. Rejections carry per-item
// reasons; test-traffic skips are counted separately because they are a
// deliberate filter, not validation failures.
type Report struct {
	Received    int
	Accepted    int
	TestSkipped int
	Rejections  []string
}

// Jobs normalizes a raw payload (object or array) into canonical job
// records tagged with source. Input order is preserved.
func Jobs(payload any, source string, now time.Time) ([]types.CanonicalJob, *Report, error) {
	items, err := locateJobs(payload)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Received: len(items)}
	jobs := make([]types.CanonicalJob, 0, len(items))

	for idx, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			report.Rejections = append(report.Rejections, fmt.Sprintf("job %d: not an object", idx))
			continue
		}

		if isTestTraffic(raw) {
			report.TestSkipped++
			continue
		}

		job, reason := fromRaw(raw, source, now)
		if reason != "" {
			report.Rejections = append(report.Rejections, fmt.Sprintf("job %d: %s", idx, reason))
			continue
		}

		jobs = append(jobs, job)
		report.Accepted++
	}

	return jobs, report, nil
}

// locateJobs finds the job array inside the payload: a top-level array, one
// of the known container keys, or the payload itself when it looks like a
// single job object.
func locateJobs(payload any) ([]any, error) {
	switch p := payload.(type) {
	case []any:
		return p, nil
	case map[string]any:
		for _, key := range containerKeys {
			if items, ok := lookupArray(p, key); ok {
				return items, nil
			}
		}
		// A bare object with a title or url is treated as a one-element list.
		if _, ok := p["title"]; ok {
			return []any{p}, nil
		}
		if _, ok := p["url"]; ok {
			return []any{p}, nil
		}
		return nil, ErrNoJobsArray
	default:
		return nil, ErrNoJobsArray
	}
}

func lookupArray(m map[string]any, key string) ([]any, bool) {
	cur := any(m)
	for _, part := range strings.Split(key, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	items, ok := cur.([]any)
	return items, ok
}

// isTestTraffic reports whether the item is a vendor test event: an explicit
// test flag, or "test" anywhere in the title. These are skipped silently so
// webhook smoke tests don't pollute the job store or the error counters.
func isTestTraffic(raw map[string]any) bool {
	for _, key := range []string{"test", "is_test", "isTest", "test_event"} {
		if b, ok := raw[key].(bool); ok && b {
			return true
		}
	}
	return strings.Contains(strings.ToLower(extract.Title(raw)), "test")
}

// fromRaw extracts every canonical field and applies the required-field
// rejection rules in order. The returned reason is empty on success.
func fromRaw(raw map[string]any, source string, now time.Time) (types.CanonicalJob, string) {
	var job types.CanonicalJob

	title := extract.Title(raw)
	if title == "" {
		return job, "missing or empty title"
	}

	url := extract.URL(raw)
	if url == "" {
		return job, "missing or empty url"
	}

	client := extract.Client(raw)
	if client.Name == "" {
		return job, "missing or empty client name"
	}

	budget := extract.Budget(raw)
	if budget == nil {
		return job, "missing budget"
	}
	if *budget < 0 {
		return job, fmt.Sprintf("invalid budget (must be non-negative): %v", *budget)
	}

	job = types.CanonicalJob{
		Title:       title,
		URL:         url,
		Description: extract.Description(raw),
		Source:      source,
		Region:      extract.Region(raw),
		PostedAt:    extract.PostedAt(raw, now),
		Skills:      extract.Skills(raw),
		Budget:      *budget,
		Proposals:   extract.Proposals(raw),
		Client:      client,
		Raw:         raw,
	}
	return job, ""
}
