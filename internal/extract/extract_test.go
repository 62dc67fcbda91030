package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected string
	}{
		{"plain title", map[string]any{"title": "Go Developer"}, "Go Developer"},
		{"jobTitle fallback", map[string]any{"jobTitle": "Backend Engineer"}, "Backend Engineer"},
		{"title wins over name", map[string]any{"title": "A", "name": "B"}, "A"},
		{"whitespace title falls through", map[string]any{"title": "   ", "name": "B"}, "B"},
		{"trims whitespace", map[string]any{"title": "  Go Dev  "}, "Go Dev"},
		{"missing", map[string]any{}, ""},
		{"non-string ignored", map[string]any{"title": 42}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Title(tt.raw))
		})
	}
}

func TestRegion(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected string
	}{
		{"plain country", map[string]any{"country": "Germany"}, "Germany"},
		{"location object", map[string]any{"location": map[string]any{"name": "Poland"}}, "Poland"},
		{"object country field", map[string]any{"region": map[string]any{"country": "India"}}, "India"},
		{"missing", map[string]any{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Region(tt.raw))
		})
	}
}

func TestProposals(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected *int
	}{
		{"numeric", map[string]any{"proposals": float64(12)}, intPtr(12)},
		{"string number", map[string]any{"proposalCount": "7"}, intPtr(7)},
		{"applicants fallback", map[string]any{"applicants": 3}, intPtr(3)},
		{"negative rejected", map[string]any{"proposals": float64(-1)}, nil},
		{"missing", map[string]any{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Proposals(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestSkills(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected []string
	}{
		{
			name:     "list of strings",
			raw:      map[string]any{"skills": []any{"Go", "Python"}},
			expected: []string{"Go", "Python"},
		},
		{
			name:     "list of objects",
			raw:      map[string]any{"skills": []any{map[string]any{"name": "Go"}, map[string]any{"title": "SQL"}}},
			expected: []string{"Go", "SQL"},
		},
		{
			name:     "comma separated string",
			raw:      map[string]any{"categories": "Go, Python , Go"},
			expected: []string{"Go", "Python"},
		},
		{
			name:     "dedupe preserves first-seen order",
			raw:      map[string]any{"skills": []any{"Go", "SQL", "Go", "Python", "SQL"}},
			expected: []string{"Go", "SQL", "Python"},
		},
		{
			name:     "empty entries dropped",
			raw:      map[string]any{"skills": []any{" ", ""}},
			expected: nil,
		},
		{
			name:     "missing",
			raw:      map[string]any{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Skills(tt.raw))
		})
	}
}

func TestClient(t *testing.T) {
	raw := map[string]any{
		"client_name": "Acme Corp",
		"client": map[string]any{
			"paymentVerified": true,
			"rating":          4.8,
			"reviewsCount":    float64(25),
			"totalSpent":      float64(10000),
		},
	}

	info := Client(raw)
	assert.Equal(t, "Acme Corp", info.Name)
	require.NotNil(t, info.PaymentVerified)
	assert.True(t, *info.PaymentVerified)
	require.NotNil(t, info.Rating)
	assert.InDelta(t, 4.8, *info.Rating, 0.001)
	require.NotNil(t, info.Reviews)
	assert.Equal(t, 25, *info.Reviews)
	require.NotNil(t, info.TotalSpent)
	assert.InDelta(t, 10000, *info.TotalSpent, 0.001)

	// Absent sub-fields stay nil, not zero.
	assert.Nil(t, info.PhoneVerified)
	assert.Nil(t, info.HiringRate)
}

func TestClientNameNested(t *testing.T) {
	raw := map[string]any{"client": map[string]any{"name": "Jane"}}
	assert.Equal(t, "Jane", ClientName(raw))

	// Top-level client_name wins over the nested object.
	raw["client_name"] = "Top"
	assert.Equal(t, "Top", ClientName(raw))
}

func intPtr(n int) *int { return &n }
