package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesetDecodeDefaultsEnabled(t *testing.T) {
	doc := `{
		"rules": [
			{"name": "min-budget", "target_path": "job.budget", "op": "gte", "value": 100, "required": true}
		]
	}`

	var rs Ruleset
	require.NoError(t, json.Unmarshal([]byte(doc), &rs))

	assert.True(t, rs.Enabled)
	require.Len(t, rs.Rules, 1)
	assert.True(t, rs.Rules[0].Enabled)
	assert.True(t, rs.Rules[0].Required)
}

func TestRulesetDecodeExplicitDisabled(t *testing.T) {
	doc := `{
		"enabled": false,
		"rules": [
			{"name": "off", "enabled": false, "target_path": "job.budget", "op": "exists"}
		]
	}`

	var rs Ruleset
	require.NoError(t, json.Unmarshal([]byte(doc), &rs))

	assert.False(t, rs.Enabled)
	require.Len(t, rs.Rules, 1)
	assert.False(t, rs.Rules[0].Enabled)
}
