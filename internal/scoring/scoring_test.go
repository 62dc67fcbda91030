package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-funnel/internal/configstore"
	"github.com/jonathan/job-funnel/internal/types"
)

type fakeScoreStore struct {
	jobURL string
	jobID  string
	result *types.ScoreResult
	err    error
}

func (f *fakeScoreStore) InsertScore(_ context.Context, jobURL, jobID string, result *types.ScoreResult) (string, error) {
	f.jobURL = jobURL
	f.jobID = jobID
	f.result = result
	return "score-1", f.err
}

func scoredJob() *types.CanonicalJob {
	rating := 4.9
	verified := true
	return &types.CanonicalJob{
		Title:  "Go Backend Developer",
		URL:    "https://www.upwork.com/jobs/~0123abc",
		Source: "webhook",
		Budget: 800,
		Skills: []string{"go", "postgres"},
		Client: types.ClientInfo{
			Name:            "Acme Corp",
			Rating:          &rating,
			PaymentVerified: &verified,
		},
	}
}

func weightedRule(name, path string, op types.RuleOp, value any, weight float64) types.Rule {
	return types.Rule{
		Name:       name,
		Enabled:    true,
		TargetPath: path,
		Op:         op,
		Value:      value,
		Weight:     &weight,
	}
}

func TestScoreNoRulesetsPassesTrivially(t *testing.T) {
	svc := New(&configstore.Memory{}, nil)

	result, err := svc.Score(context.Background(), scoredJob())
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.NotNil(t, result.RejectionReasons)
	assert.Empty(t, result.RejectionReasons)
	assert.Equal(t, 0.0, *result.CompetitionScore)
	assert.Equal(t, 0.0, *result.InviteBiasRiskScore)
	assert.Equal(t, 0.0, *result.BidworthinessScore)
	assert.Equal(t, types.ConfidenceUnknown, result.Confidence)
}

func TestScoreAggregatesWeightsAcrossRulesets(t *testing.T) {
	cfg := &configstore.Memory{}
	cfg.SetRuleset(configstore.RulesetClient, &types.Ruleset{
		Enabled: true,
		Rules: []types.Rule{
			weightedRule("rating-high", "client.rating", types.OpGte, 4.5, 2),
			weightedRule("verified", "client.payment_verified", types.OpEq, true, 1),
		},
	})
	cfg.SetRuleset(configstore.RulesetJob, &types.Ruleset{
		Enabled:     true,
		Aggregation: types.AggMax,
		Rules: []types.Rule{
			weightedRule("budget-large", "job.budget", types.OpGte, 500, 3),
			weightedRule("has-go", "job.skills", types.OpContains, "go", 5),
		},
	})
	cfg.SetRuleset(configstore.RulesetRisk, &types.Ruleset{
		Enabled: true,
		Rules: []types.Rule{
			// Fails: no proposals field on the job, so the weight never lands.
			weightedRule("crowded", "job.proposals", types.OpGt, 40, 9),
		},
	})

	result, err := New(cfg, nil).Score(context.Background(), scoredJob())
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 5.0, *result.CompetitionScore)
	assert.Equal(t, 0.0, *result.InviteBiasRiskScore)
	// client sum (3) plus competition (5).
	assert.Equal(t, 8.0, *result.BidworthinessScore)
	require.Len(t, result.RejectionReasons, 1)
	assert.Contains(t, result.RejectionReasons[0], "risk:")
	assert.Contains(t, result.RejectionReasons[0], `rule "crowded" failed`)
}

func TestScoreRequiredRuleFailureRejects(t *testing.T) {
	required := weightedRule("verified", "client.payment_verified", types.OpEq, false, 1)
	required.Required = true

	cfg := &configstore.Memory{}
	cfg.SetRuleset(configstore.RulesetClient, &types.Ruleset{
		Enabled: true,
		Rules:   []types.Rule{required},
	})

	result, err := New(cfg, nil).Score(context.Background(), scoredJob())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	require.Len(t, result.RejectionReasons, 1)
	assert.Contains(t, result.RejectionReasons[0], "client:")
}

func TestScoreSkipsDisabled(t *testing.T) {
	disabledRule := weightedRule("off", "job.budget", types.OpGt, 1e9, 100)
	disabledRule.Enabled = false
	disabledRule.Required = true

	cfg := &configstore.Memory{}
	cfg.SetRuleset(configstore.RulesetClient, &types.Ruleset{
		Enabled: true,
		Rules:   []types.Rule{disabledRule},
	})
	// A disabled ruleset contributes nothing even with failing required rules.
	cfg.SetRuleset(configstore.RulesetRisk, &types.Ruleset{
		Enabled: false,
		Rules:   []types.Rule{requiredFailing()},
	})

	result, err := New(cfg, nil).Score(context.Background(), scoredJob())
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Empty(t, result.RejectionReasons)
}

func TestScoreEnforcesRulesetsWithoutEnabledKey(t *testing.T) {
	// Stored documents routinely omit "enabled"; that must mean on, not off.
	doc := `{
		"rules": [
			{"name": "min-budget", "target_path": "job.budget", "op": "gte", "value": 100000, "required": true}
		]
	}`
	var rs types.Ruleset
	require.NoError(t, json.Unmarshal([]byte(doc), &rs))

	cfg := &configstore.Memory{}
	cfg.SetRuleset(configstore.RulesetJob, &rs)

	result, err := New(cfg, nil).Score(context.Background(), scoredJob())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	require.Len(t, result.RejectionReasons, 1)
	assert.Contains(t, result.RejectionReasons[0], `rule "min-budget" failed`)
}

func requiredFailing() types.Rule {
	r := weightedRule("impossible", "job.budget", types.OpLt, -1, 1)
	r.Required = true
	return r
}

func TestScoreAndRecord(t *testing.T) {
	store := &fakeScoreStore{}
	svc := New(&configstore.Memory{}, store)

	job := scoredJob()
	result, err := svc.ScoreAndRecord(context.Background(), job, "job-id-1")
	require.NoError(t, err)

	assert.Equal(t, job.URL, store.jobURL)
	assert.Equal(t, "job-id-1", store.jobID)
	assert.Equal(t, result, store.result)
}

func TestScoreAndRecordStoreFailure(t *testing.T) {
	store := &fakeScoreStore{err: errors.New("connection lost")}
	svc := New(&configstore.Memory{}, store)

	_, err := svc.ScoreAndRecord(context.Background(), scoredJob(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record score")
}
