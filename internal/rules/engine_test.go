package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-funnel/internal/types"
)

func evalRule(op types.RuleOp, path string, value any, payload map[string]any) Eval {
	return Evaluate(types.Rule{
		Name:       "test-rule",
		Enabled:    true,
		TargetPath: path,
		Op:         op,
		Value:      value,
	}, payload)
}

func TestEvaluateOperators(t *testing.T) {
	payload := map[string]any{
		"budget":    float64(500),
		"title":     "Senior Go Developer",
		"skills":    []any{"go", "postgres"},
		"proposals": nil,
		"client": map[string]any{
			"rating":           4.8,
			"payment_verified": true,
			"country":          "US",
		},
	}

	tests := []struct {
		name   string
		op     types.RuleOp
		path   string
		value  any
		passed bool
	}{
		{"eq match", types.OpEq, "client.country", "US", true},
		{"eq mismatch", types.OpEq, "client.country", "DE", false},
		{"eq numeric coercion int vs float", types.OpEq, "budget", 500, true},
		{"eq nil equals nil", types.OpEq, "proposals", nil, true},
		{"eq nil vs value", types.OpEq, "proposals", float64(3), false},
		{"ne match", types.OpNe, "client.country", "DE", true},
		{"ne mismatch", types.OpNe, "client.country", "US", false},
		{"gt pass", types.OpGt, "budget", float64(100), true},
		{"gt fail", types.OpGt, "budget", float64(500), false},
		{"gte boundary", types.OpGte, "budget", float64(500), true},
		{"lt pass", types.OpLt, "client.rating", float64(5), true},
		{"lte boundary", types.OpLte, "client.rating", 4.8, true},
		{"ordered comparison with nil actual fails", types.OpGt, "proposals", float64(1), false},
		{"ordered comparison with missing path fails", types.OpLt, "client.hires", float64(10), false},
		{"ordered comparison of strings is lexicographic", types.OpGt, "client.country", "AA", true},
		{"in membership", types.OpIn, "client.country", []any{"US", "CA"}, true},
		{"in miss", types.OpIn, "client.country", []any{"DE", "FR"}, false},
		{"in numeric coercion", types.OpIn, "budget", []any{100, 500}, true},
		{"in non-sequence value fails", types.OpIn, "client.country", "US", false},
		{"nin pass", types.OpNin, "client.country", []any{"DE", "FR"}, true},
		{"nin fail", types.OpNin, "client.country", []any{"US"}, false},
		{"contains substring case-insensitive", types.OpContains, "title", "go developer", true},
		{"contains substring miss", types.OpContains, "title", "python", false},
		{"contains sequence membership", types.OpContains, "skills", "postgres", true},
		{"contains sequence miss", types.OpContains, "skills", "rust", false},
		{"contains nil actual fails", types.OpContains, "proposals", "x", false},
		{"regex match", types.OpRegex, "title", "(?i)^senior", true},
		{"regex miss", types.OpRegex, "title", "^junior", false},
		{"regex nil actual fails", types.OpRegex, "proposals", ".*", false},
		{"exists present", types.OpExists, "client.payment_verified", nil, true},
		{"exists absent", types.OpExists, "client.hires", nil, false},
		{"exists explicit null absent", types.OpExists, "proposals", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := evalRule(tt.op, tt.path, tt.value, payload)
			assert.Equal(t, tt.passed, ev.Passed)
			if tt.passed {
				assert.Empty(t, ev.Reason)
			} else {
				assert.NotEmpty(t, ev.Reason)
			}
		})
	}
}

func TestEvaluateBadRegexFailsWithoutPanic(t *testing.T) {
	ev := evalRule(types.OpRegex, "title", "([unclosed", map[string]any{"title": "x"})

	assert.False(t, ev.Passed)
	assert.Contains(t, ev.Reason, "rule eval error")
	assert.Contains(t, ev.Reason, "bad regex")
}

func TestEvaluateUnsupportedOp(t *testing.T) {
	ev := evalRule(types.RuleOp("between"), "budget", float64(1), map[string]any{"budget": float64(5)})

	assert.False(t, ev.Passed)
	assert.Equal(t, "unsupported op: between", ev.Reason)
}

func TestEvaluateFailureReasonNamesRule(t *testing.T) {
	ev := evalRule(types.OpGt, "budget", float64(1000), map[string]any{"budget": float64(5)})

	assert.False(t, ev.Passed)
	assert.Contains(t, ev.Reason, `rule "test-rule" failed`)
	assert.Contains(t, ev.Reason, "budget gt 1000")
	assert.Contains(t, ev.Reason, "actual=5")
}

func TestLookup(t *testing.T) {
	payload := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": float64(1)}},
		"s": "leaf",
	}

	tests := []struct {
		name     string
		path     string
		expected any
	}{
		{"nested hit", "a.b.c", float64(1)},
		{"top-level hit", "s", "leaf"},
		{"missing leaf", "a.b.x", nil},
		{"missing intermediate", "a.x.c", nil},
		{"non-map intermediate", "s.b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Lookup(payload, tt.path))
		})
	}
}
