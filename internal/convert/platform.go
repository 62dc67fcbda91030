package convert

import (
	"errors"
	"time"

	"github.com/jonathan/job-funnel/internal/extract"
	"github.com/jonathan/job-funnel/internal/types"
)

// ErrNoJobs means no job array was found, or every entry lacked a title
// or URL.
var ErrNoJobs = errors.New("no valid jobs found in payload")

// FromPlatformJSON converts a search-results JSON blob copied from the
// platform's web interface into ingestion items. Entries without both a
// title and a URL are dropped.
func FromPlatformJSON(data map[string]any, source string, now time.Time) ([]map[string]any, error) {
	jobs := locatePlatformJobs(data)
	if jobs == nil {
		return nil, ErrNoJobs
	}

	var items []map[string]any
	for _, entry := range jobs {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		title := extract.Title(raw)
		link := extract.NormalizeURL(extract.URL(raw))
		if title == "" || link == "" {
			continue
		}

		var postedAt any
		if t := extract.PostedAt(raw, now); t != nil {
			postedAt = t.Format(time.RFC3339)
		}

		item := map[string]any{
			"title":       title,
			"description": StripHTML(extract.Description(raw)),
			"url":         link,
			"source":      source,
			"posted_at":   postedAt,
			"skills":      extract.Skills(raw),
			"client":      clientDoc(extract.Client(raw)),
			"raw": map[string]any{
				"original_platform_json": raw,
				"platform_source":        source,
			},
		}
		if region := extract.Region(raw); region != "" {
			item["region"] = region
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrNoJobs
	}
	return items, nil
}

// locatePlatformJobs probes the container shapes the platform's search
// API responds with.
func locatePlatformJobs(data map[string]any) []any {
	if jobs, ok := data["jobs"].([]any); ok {
		return jobs
	}
	if results, ok := data["results"].(map[string]any); ok {
		if jobs, ok := results["jobs"].([]any); ok {
			return jobs
		}
		if jobs, ok := results["data"].([]any); ok {
			return jobs
		}
	}
	if inner, ok := data["data"].(map[string]any); ok {
		if jobs, ok := inner["jobs"].([]any); ok {
			return jobs
		}
	}
	if sr, ok := data["searchResults"].(map[string]any); ok {
		if jobs, ok := sr["jobs"].([]any); ok {
			return jobs
		}
	}
	return nil
}

// clientDoc renders extracted client info with only the fields the
// source actually carried.
func clientDoc(c types.ClientInfo) map[string]any {
	doc := map[string]any{}
	if c.Name != "" {
		doc["name"] = c.Name
	}
	if c.PaymentVerified != nil {
		doc["payment_verified"] = *c.PaymentVerified
	}
	if c.PhoneVerified != nil {
		doc["phone_verified"] = *c.PhoneVerified
	}
	if c.Rating != nil {
		doc["rating"] = *c.Rating
	}
	if c.Reviews != nil {
		doc["reviews"] = *c.Reviews
	}
	if c.TotalSpent != nil {
		doc["total_spent"] = *c.TotalSpent
	}
	if c.HiringRate != nil {
		doc["hiring_rate"] = *c.HiringRate
	}
	return doc
}
