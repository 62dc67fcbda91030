// Package scoring orchestrates the client/job/risk rulesets through the
// rule engine and folds their outcomes into a ScoreResult. Scoring is
// independent of admission: a job can be scored whether or not it passed
// the keyword/geo gate.
package scoring

import (
	"context"
	"fmt"

	"github.com/jonathan/job-funnel/internal/configstore"
	"github.com/jonathan/job-funnel/internal/rules"
	"github.com/jonathan/job-funnel/internal/types"
)

// ScoreStore is the append-only score history. Every scoring call is
// recorded keyed by job URL, independent of the job row itself.
type ScoreStore interface {
	InsertScore(ctx context.Context, jobURL, jobID string, result *types.ScoreResult) (string, error)
}

// Service scores jobs using rulesets loaded fresh from the config provider
// on every call.
type Service struct {
	cfg    configstore.Provider
	scores ScoreStore
}

// New creates a scoring service. scores may be nil when persistence of the
// score history is not wanted (tests, CLI dry runs).
func New(cfg configstore.Provider, scores ScoreStore) *Service {
	return &Service{cfg: cfg, scores: scores}
}

// rulesetOutcome carries one ruleset's contribution to the verdict.
type rulesetOutcome struct {
	weights []float64
	reasons []string
	ok      bool
	agg     types.Aggregation
}

// Score evaluates the three rulesets against the job and returns the
// combined result. A disabled or absent ruleset contributes nothing and
// passes trivially. Rule evaluation errors degrade to failed rules with
// reasons; they never fail the call.
func (s *Service) Score(ctx context.Context, job *types.CanonicalJob) (*types.ScoreResult, error) {
	payload := job.RulePayload()

	client, err := s.applyRuleset(ctx, configstore.RulesetClient, "client", payload)
	if err != nil {
		return nil, err
	}
	jobOut, err := s.applyRuleset(ctx, configstore.RulesetJob, "job", payload)
	if err != nil {
		return nil, err
	}
	risk, err := s.applyRuleset(ctx, configstore.RulesetRisk, "risk", payload)
	if err != nil {
		return nil, err
	}

	competition := rules.Aggregate(jobOut.weights, jobOut.agg)
	inviteBiasRisk := rules.Aggregate(risk.weights, risk.agg)
	bidworthiness := rules.Aggregate(client.weights, client.agg) + competition

	result := &types.ScoreResult{
		Passed:              client.ok && jobOut.ok && risk.ok,
		RejectionReasons:    concat(client.reasons, jobOut.reasons, risk.reasons),
		CompetitionScore:    &competition,
		InviteBiasRiskScore: &inviteBiasRisk,
		BidworthinessScore:  &bidworthiness,
		Confidence:          types.ConfidenceUnknown,
	}
	return result, nil
}

// ScoreAndRecord scores the job and appends the result to the score
// history.
func (s *Service) ScoreAndRecord(ctx context.Context, job *types.CanonicalJob, jobID string) (*types.ScoreResult, error) {
	result, err := s.Score(ctx, job)
	if err != nil {
		return nil, err
	}
	if s.scores != nil {
		if _, err := s.scores.InsertScore(ctx, job.URL, jobID, result); err != nil {
			return nil, fmt.Errorf("failed to record score: %w", err)
		}
	}
	return result, nil
}

func (s *Service) applyRuleset(ctx context.Context, name, label string, payload map[string]any) (rulesetOutcome, error) {
	out := rulesetOutcome{ok: true, agg: types.AggSum}

	rs, err := s.cfg.Ruleset(ctx, name)
	if err != nil {
		return out, fmt.Errorf("failed to load ruleset %s: %w", name, err)
	}
	if rs == nil || !rs.Enabled {
		return out, nil
	}
	if rs.Aggregation != "" {
		out.agg = rs.Aggregation
	}

	for _, rule := range rs.Rules {
		if !rule.Enabled {
			continue
		}
		ev := rules.Evaluate(rule, payload)
		if !ev.Passed {
			if rule.Required {
				out.ok = false
			}
			if ev.Reason != "" {
				out.reasons = append(out.reasons, label+":"+ev.Reason)
			}
			continue
		}
		if rule.Weight != nil {
			out.weights = append(out.weights, *rule.Weight)
		}
	}
	return out, nil
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	if out == nil {
		out = []string{}
	}
	return out
}
