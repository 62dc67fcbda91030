package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func validItem(overrides map[string]any) map[string]any {
	item := map[string]any{
		"title":       "Build a scraping pipeline",
		"url":         "https://www.upwork.com/jobs/~0123abc",
		"description": "Long-running contract",
		"budget":      float64(500),
		"client_name": "Acme Corp",
	}
	for k, v := range overrides {
		item[k] = v
	}
	return item
}

func TestJobsAcceptsValidBatch(t *testing.T) {
	payload := map[string]any{"jobs": []any{
		validItem(nil),
		validItem(map[string]any{"url": "/jobs/~0456def", "title": "Second job"}),
	}}

	jobs, report, err := Jobs(payload, "webhook", testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Received)
	assert.Equal(t, 2, report.Accepted)
	assert.Empty(t, report.Rejections)
	require.Len(t, jobs, 2)

	assert.Equal(t, "Build a scraping pipeline", jobs[0].Title)
	assert.Equal(t, "webhook", jobs[0].Source)
	assert.Equal(t, 500.0, jobs[0].Budget)
	assert.Equal(t, "Acme Corp", jobs[0].Client.Name)
	// Relative links are normalized during extraction, not left as-is.
	assert.Equal(t, "https://www.upwork.com/jobs/~0456def", jobs[1].URL)
}

func TestJobsRejectionRules(t *testing.T) {
	tests := []struct {
		name   string
		item   map[string]any
		reason string
	}{
		{
			name:   "missing title",
			item:   validItem(map[string]any{"title": ""}),
			reason: "job 0: missing or empty title",
		},
		{
			name:   "missing url",
			item:   validItem(map[string]any{"url": ""}),
			reason: "job 0: missing or empty url",
		},
		{
			name:   "missing client name",
			item:   validItem(map[string]any{"client_name": ""}),
			reason: "job 0: missing or empty client name",
		},
		{
			name:   "missing budget",
			item:   validItem(map[string]any{"budget": nil}),
			reason: "job 0: missing budget",
		},
		{
			name:   "negative budget",
			item:   validItem(map[string]any{"budget": float64(-5)}),
			reason: "job 0: invalid budget (must be non-negative): -5",
		},
		{
			// Title check fires first even when other fields are broken too.
			name:   "title checked before url",
			item:   map[string]any{"budget": float64(10)},
			reason: "job 0: missing or empty title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, report, err := Jobs([]any{tt.item}, "webhook", testNow)
			require.NoError(t, err)
			assert.Empty(t, jobs)
			assert.Equal(t, 0, report.Accepted)
			require.Len(t, report.Rejections, 1)
			assert.Equal(t, tt.reason, report.Rejections[0])
		})
	}
}

func TestJobsPerItemFailuresDoNotAbortBatch(t *testing.T) {
	payload := []any{
		validItem(map[string]any{"title": ""}),
		"not even an object",
		validItem(nil),
	}

	jobs, report, err := Jobs(payload, "feed", testNow)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Received)
	assert.Equal(t, 1, report.Accepted)
	assert.Len(t, report.Rejections, 2)
	assert.Contains(t, report.Rejections[1], "not an object")
	require.Len(t, jobs, 1)
	assert.Equal(t, "feed", jobs[0].Source)
}

func TestJobsSkipsTestTraffic(t *testing.T) {
	payload := []any{
		validItem(map[string]any{"is_test": true}),
		validItem(map[string]any{"title": "This is a TEST posting"}),
		validItem(nil),
	}

	jobs, report, err := Jobs(payload, "webhook", testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TestSkipped)
	assert.Equal(t, 1, report.Accepted)
	assert.Empty(t, report.Rejections)
	assert.Len(t, jobs, 1)
}

func TestLocateJobsContainers(t *testing.T) {
	item := validItem(nil)

	tests := []struct {
		name    string
		payload any
	}{
		{"top-level array", []any{item}},
		{"jobs key", map[string]any{"jobs": []any{item}}},
		{"data key", map[string]any{"data": []any{item}}},
		{"items key", map[string]any{"items": []any{item}}},
		{"nested data.jobs", map[string]any{"data": map[string]any{"jobs": []any{item}}}},
		{"nested results.jobs", map[string]any{"results": map[string]any{"jobs": []any{item}}}},
		{"nested searchResults.jobs", map[string]any{"searchResults": map[string]any{"jobs": []any{item}}}},
		{"single job object", item},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, report, err := Jobs(tt.payload, "webhook", testNow)
			require.NoError(t, err)
			assert.Equal(t, 1, report.Accepted)
			assert.Len(t, jobs, 1)
		})
	}
}

func TestJobsStructuralError(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"object without jobs or identifying fields", map[string]any{"status": "ok"}},
		{"scalar payload", "hello"},
		{"nil payload", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Jobs(tt.payload, "webhook", testNow)
			assert.ErrorIs(t, err, ErrNoJobsArray)
		})
	}
}
