package rules

import "github.com/jonathan/job-funnel/internal/types"

// Aggregate collapses the weights of passing rules into one score per the
// ruleset's mode. Failing rules never contribute a weight, whatever its
// sign, and an empty list aggregates to 0 under every mode. An unknown
// mode falls back to sum, matching the ruleset default.
func Aggregate(weights []float64, mode types.Aggregation) float64 {
	if len(weights) == 0 {
		return 0.0
	}

	switch mode {
	case types.AggAvg:
		return sum(weights) / float64(len(weights))
	case types.AggMax:
		out := weights[0]
		for _, w := range weights[1:] {
			if w > out {
				out = w
			}
		}
		return out
	case types.AggMin:
		out := weights[0]
		for _, w := range weights[1:] {
			if w < out {
				out = w
			}
		}
		return out
	default:
		return sum(weights)
	}
}

func sum(weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}
