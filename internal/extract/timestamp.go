package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold disambiguates Unix timestamps: values above it are
// treated as milliseconds, below as seconds.
const epochMillisThreshold = 1e12

// isoLayouts are tried in order for ISO-8601-ish strings.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// rfc822Layouts cover RSS pubDate variants.
var rfc822Layouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

var relativePattern = regexp.MustCompile(`(?i)^\s*(\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago\s*$`)

// relativeUnits maps relative-text units to durations. Months are
// approximated as 30 days and years as 365; these are accepted
// approximations carried over from the feeds this ingests.
var relativeUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// PostedAt extracts the posting timestamp, trying each candidate field with
// every supported format: numeric Unix epoch (ms or s), ISO-8601, RFC-822,
// then relative "N units ago" text anchored at now. Returns nil when
// nothing parses; the extractor never substitutes an ingestion time itself.
func PostedAt(raw map[string]any, now time.Time) *time.Time {
	for _, k := range postedAtKeys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if ts := parseTimestamp(v, now); ts != nil {
			return ts
		}
	}
	return nil
}

func parseTimestamp(v any, now time.Time) *time.Time {
	switch t := v.(type) {
	case float64:
		return fromEpoch(t)
	case int:
		return fromEpoch(float64(t))
	case int64:
		return fromEpoch(float64(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f)
		}
		// ISO-8601, tolerating a bare Z suffix on layouts without zones.
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return utcPtr(parsed)
			}
		}
		for _, layout := range rfc822Layouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return utcPtr(parsed)
			}
		}
		return fromRelative(s, now)
	default:
		return nil
	}
}

func fromEpoch(f float64) *time.Time {
	if f <= 0 {
		return nil
	}
	var parsed time.Time
	if f > epochMillisThreshold {
		parsed = time.UnixMilli(int64(f))
	} else {
		parsed = time.Unix(int64(f), 0)
	}
	return utcPtr(parsed)
}

func fromRelative(s string, now time.Time) *time.Time {
	m := relativePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	unit, ok := relativeUnits[strings.ToLower(m[2])]
	if !ok {
		return nil
	}
	return utcPtr(now.Add(-time.Duration(n) * unit))
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
