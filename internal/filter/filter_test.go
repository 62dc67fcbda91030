package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-funnel/internal/types"
)

func sampleJob() *types.CanonicalJob {
	return &types.CanonicalJob{
		Title:       "Go Backend Developer",
		Description: "Build REST APIs with Postgres",
		Skills:      []string{"Golang", "Docker"},
		Region:      "United States",
	}
}

func TestKeywordMatch(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *types.KeywordConfig
		ok      bool
		reasons []string
	}{
		{
			name: "nil config admits",
			cfg:  nil,
			ok:   true,
		},
		{
			name: "missing mode admits",
			cfg:  &types.KeywordConfig{MatchLocations: []string{"title"}, Terms: []string{"go"}},
			ok:   true,
		},
		{
			name: "empty locations admit",
			cfg:  &types.KeywordConfig{MatchMode: "any", Terms: []string{"go"}},
			ok:   true,
		},
		{
			name: "empty terms admit",
			cfg:  &types.KeywordConfig{MatchMode: "any", MatchLocations: []string{"title"}},
			ok:   true,
		},
		{
			name: "any mode one match admits",
			cfg: &types.KeywordConfig{
				MatchMode:      "any",
				MatchLocations: []string{"title"},
				Terms:          []string{"python", "go"},
			},
			ok: true,
		},
		{
			name: "any mode case-insensitive",
			cfg: &types.KeywordConfig{
				MatchMode:      "any",
				MatchLocations: []string{"title"},
				Terms:          []string{"BACKEND"},
			},
			ok: true,
		},
		{
			name: "any mode no match rejects",
			cfg: &types.KeywordConfig{
				MatchMode:      "any",
				MatchLocations: []string{"title"},
				Terms:          []string{"python", "rails"},
			},
			ok:      false,
			reasons: []string{"no_keywords_matched"},
		},
		{
			name: "all mode every term present",
			cfg: &types.KeywordConfig{
				MatchMode:      "all",
				MatchLocations: []string{"title", "description"},
				Terms:          []string{"go", "postgres"},
			},
			ok: true,
		},
		{
			name: "all mode reports missing terms",
			cfg: &types.KeywordConfig{
				MatchMode:      "all",
				MatchLocations: []string{"title"},
				Terms:          []string{"go", "kubernetes", "terraform"},
			},
			ok:      false,
			reasons: []string{"missing_keywords:[kubernetes terraform]"},
		},
		{
			name: "skills location searched",
			cfg: &types.KeywordConfig{
				MatchMode:      "any",
				MatchLocations: []string{"skills"},
				Terms:          []string{"docker"},
			},
			ok: true,
		},
		{
			name: "term outside configured locations rejects",
			cfg: &types.KeywordConfig{
				MatchMode:      "any",
				MatchLocations: []string{"title"},
				Terms:          []string{"postgres"},
			},
			ok:      false,
			reasons: []string{"no_keywords_matched"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reasons := KeywordMatch(sampleJob(), tt.cfg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reasons, reasons)
		})
	}
}

func TestGeoMatch(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		cfg     *types.GeoConfig
		ok      bool
		reasons []string
	}{
		{
			name:   "nil config admits",
			region: "India",
			cfg:    nil,
			ok:     true,
		},
		{
			name:   "empty exclusion list admits",
			region: "India",
			cfg:    &types.GeoConfig{},
			ok:     true,
		},
		{
			name:   "job without region admits",
			region: "  ",
			cfg:    &types.GeoConfig{ExcludedCountries: []string{"India"}},
			ok:     true,
		},
		{
			name:    "excluded region rejects",
			region:  "India",
			cfg:     &types.GeoConfig{ExcludedCountries: []string{"Pakistan", "India"}},
			ok:      false,
			reasons: []string{"excluded_region:India"},
		},
		{
			name:   "match is case-sensitive",
			region: "india",
			cfg:    &types.GeoConfig{ExcludedCountries: []string{"India"}},
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := sampleJob()
			job.Region = tt.region
			ok, reasons := GeoMatch(job, tt.cfg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reasons, reasons)
		})
	}
}

func TestAdmitCombinesChecks(t *testing.T) {
	job := sampleJob()
	job.Region = "India"

	kw := &types.KeywordConfig{
		MatchMode:      "any",
		MatchLocations: []string{"title"},
		Terms:          []string{"rails"},
	}
	geo := &types.GeoConfig{ExcludedCountries: []string{"India"}}

	d := Admit(job, kw, geo)
	assert.False(t, d.OK)
	assert.Equal(t, []string{"no_keywords_matched", "excluded_region:India"}, d.Reasons)

	// Unconfigured gates admit everything.
	d = Admit(job, nil, nil)
	assert.True(t, d.OK)
	assert.Empty(t, d.Reasons)
}
