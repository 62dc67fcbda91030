package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-funnel/internal/types"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		weights  []float64
		mode     types.Aggregation
		expected float64
	}{
		{"sum", []float64{1, 2, 3.5}, types.AggSum, 6.5},
		{"avg", []float64{1, 2, 3}, types.AggAvg, 2},
		{"max", []float64{-4, 2, 1}, types.AggMax, 2},
		{"min", []float64{-4, 2, 1}, types.AggMin, -4},
		{"unknown mode falls back to sum", []float64{1, 1}, types.Aggregation("median"), 2},
		{"empty mode falls back to sum", []float64{2, 3}, "", 5},
		{"empty weights always zero", nil, types.AggMax, 0},
		{"negative weights contribute to sum", []float64{5, -2}, types.AggSum, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Aggregate(tt.weights, tt.mode))
		})
	}
}
