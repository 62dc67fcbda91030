package types

import "encoding/json"

// RuleOp enumerates the comparison operators a Rule may use. Any op outside
// this set is a configuration error surfaced per-rule at evaluation time.
type RuleOp string

// Supported rule operators.
const (
	OpEq       RuleOp = "eq"
	OpNe       RuleOp = "ne"
	OpGt       RuleOp = "gt"
	OpGte      RuleOp = "gte"
	OpLt       RuleOp = "lt"
	OpLte      RuleOp = "lte"
	OpIn       RuleOp = "in"
	OpNin      RuleOp = "nin"
	OpContains RuleOp = "contains"
	OpRegex    RuleOp = "regex"
	OpExists   RuleOp = "exists"
)

// Rule is a single user-configurable filter/scoring condition. All behavior
// comes from stored documents; nothing about a rule is hard-coded.
type Rule struct {
	Name       string         `json:"name" validate:"required"`
	Enabled    bool           `json:"enabled"`
	TargetPath string         `json:"target_path" validate:"required"`
	Op         RuleOp         `json:"op" validate:"required"`
	Value      any            `json:"value,omitempty"`
	Weight     *float64       `json:"weight,omitempty"`
	Required   bool           `json:"required"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes a rule with "enabled" defaulting to true, so a
// stored document that omits the key does not silently disable the rule.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Rule(p)
	return nil
}

// Aggregation selects how passing rule weights collapse into a score.
type Aggregation string

// Supported aggregation modes. Sum is the default.
const (
	AggSum Aggregation = "sum"
	AggAvg Aggregation = "avg"
	AggMax Aggregation = "max"
	AggMin Aggregation = "min"
)

// Ruleset is a named, ordered collection of rules plus an aggregation mode.
// Three exist by convention (client_rules, job_rules, risk_rules) but the
// scoring service treats all of them identically.
type Ruleset struct {
	Enabled     bool           `json:"enabled"`
	Rules       []Rule         `json:"rules"`
	Aggregation Aggregation    `json:"aggregation,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes a ruleset with "enabled" defaulting to true.
// Only an explicit "enabled": false turns a stored ruleset off.
func (rs *Ruleset) UnmarshalJSON(data []byte) error {
	type plain Ruleset
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*rs = Ruleset(p)
	return nil
}

// KeywordConfig is the admission-gate keyword configuration. An absent or
// incomplete config means the keyword check always admits.
type KeywordConfig struct {
	MatchMode      string   `json:"match_mode,omitempty"` // "any" or "all"
	MatchLocations []string `json:"match_locations,omitempty"`
	Terms          []string `json:"terms,omitempty"`
}

// GeoConfig is the admission-gate geographic exclusion list.
type GeoConfig struct {
	ExcludedCountries []string `json:"excluded_countries,omitempty"`
}

// ConfidenceLevel qualifies a ScoreResult. It stays "unknown" unless
// confidence-determining configuration exists, which none does today.
type ConfidenceLevel string

// Confidence levels.
const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceUnknown ConfidenceLevel = "unknown"
)

// ScoreResult is the output of scoring one job against the three rulesets.
type ScoreResult struct {
	Passed              bool            `json:"passed"`
	RejectionReasons    []string        `json:"rejection_reasons"`
	CompetitionScore    *float64        `json:"competition_score,omitempty"`
	InviteBiasRiskScore *float64        `json:"invite_bias_risk_score,omitempty"`
	BidworthinessScore  *float64        `json:"bidworthiness_score,omitempty"`
	Confidence          ConfidenceLevel `json:"confidence"`
}
