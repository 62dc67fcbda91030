// Package filter implements the admission gate: keyword matching and
// geographic exclusion against a canonical job. Both checks fail open: an
// absent or incomplete configuration always admits, so unconfigured
// criteria can never reject a job.
package filter

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-funnel/internal/types"
)

// Decision is the outcome of the admission gate.
type Decision struct {
	OK      bool
	Reasons []string
}

// Admit runs the keyword and geo checks and ANDs them. The two checks are
// independent; a job rejected by both carries both sets of reasons.
func Admit(job *types.CanonicalJob, kw *types.KeywordConfig, geo *types.GeoConfig) Decision {
	kwOK, kwReasons := KeywordMatch(job, kw)
	geoOK, geoReasons := GeoMatch(job, geo)

	return Decision{
		OK:      kwOK && geoOK,
		Reasons: append(kwReasons, geoReasons...),
	}
}

// KeywordMatch checks the configured terms against a lowercased haystack
// built from the configured locations. Fail-open: no mode, no locations or
// no terms means the check admits.
func KeywordMatch(job *types.CanonicalJob, cfg *types.KeywordConfig) (bool, []string) {
	if cfg == nil || cfg.MatchMode == "" || len(cfg.MatchLocations) == 0 || len(cfg.Terms) == 0 {
		return true, nil
	}

	var haystacks []string
	for _, loc := range cfg.MatchLocations {
		switch loc {
		case "title":
			haystacks = append(haystacks, job.Title)
		case "description":
			haystacks = append(haystacks, job.Description)
		case "skills":
			haystacks = append(haystacks, strings.Join(job.Skills, " "))
		}
	}
	blob := strings.ToLower(strings.Join(haystacks, " \n "))

	if cfg.MatchMode == "all" {
		var missing []string
		for _, term := range cfg.Terms {
			if !strings.Contains(blob, strings.ToLower(term)) {
				missing = append(missing, strings.ToLower(term))
			}
		}
		if len(missing) > 0 {
			return false, []string{fmt.Sprintf("missing_keywords:%v", missing)}
		}
		return true, nil
	}

	// "any" mode: one match admits.
	for _, term := range cfg.Terms {
		if strings.Contains(blob, strings.ToLower(term)) {
			return true, nil
		}
	}
	return false, []string{"no_keywords_matched"}
}

// GeoMatch rejects jobs whose region exactly matches an excluded entry.
// Fail-open: no exclusion list or no region on the job admits. The match is
// case-sensitive as configured.
func GeoMatch(job *types.CanonicalJob, cfg *types.GeoConfig) (bool, []string) {
	if cfg == nil || len(cfg.ExcludedCountries) == 0 {
		return true, nil
	}
	region := strings.TrimSpace(job.Region)
	if region == "" {
		return true, nil
	}
	for _, excluded := range cfg.ExcludedCountries {
		if region == excluded {
			return false, []string{"excluded_region:" + region}
		}
	}
	return true, nil
}
