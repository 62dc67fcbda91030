// Package configstore provides access to user-editable configuration
// documents: keyword settings, geo filters, rulesets, AI settings, prompt
// templates and notification channels. Configuration is read fresh from the
// store on every call; nothing is cached, so edits take effect on the next
// ingestion or scoring call with no invalidation step.
package configstore

import (
	"context"
	"errors"

	"github.com/jonathan/job-funnel/internal/types"
)

// Ruleset document keys, by convention.
const (
	RulesetClient = "client_rules"
	RulesetJob    = "job_rules"
	RulesetRisk   = "risk_rules"
)

// Singleton document keys.
const (
	KeyKeywordSettings = "keyword_settings"
	KeyGeoFilters      = "geo_filters"
	KeyAISettings      = "ai_settings"
	KeyNotifications   = "notifications"
)

// ErrNotConfigured is returned by fail-closed consumers (the proposal path)
// when required configuration is absent. Fail-open consumers (the admission
// gate) treat an absent document as nil, not as an error.
var ErrNotConfigured = errors.New("configuration document not found")

// AISettings configures the proposal generation model. All three core
// fields are required; the proposal path fails closed without them.
type AISettings struct {
	Model       string         `json:"model"`
	Temperature *float64       `json:"temperature"`
	MaxTokens   *int           `json:"max_tokens"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// PromptTemplate is a stored proposal prompt. Placeholders are substituted
// with job fields at render time; users fully control the text.
type PromptTemplate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Template  string `json:"template"`
	IsDefault bool   `json:"is_default"`
}

// NotificationChannel is one configured delivery target.
type NotificationChannel struct {
	Type    string         `json:"type"` // "webhook" or "telegram"
	Enabled bool           `json:"enabled"`
	Config  map[string]any `json:"config,omitempty"`
}

// NotificationConfig is the stored notification document.
type NotificationConfig struct {
	Enabled  bool                  `json:"enabled"`
	Channels []NotificationChannel `json:"channels,omitempty"`
}

// Provider is the read side of the configuration store. Absent documents
// come back as (nil, nil); callers decide whether that is fail-open or
// fail-closed for their path.
type Provider interface {
	KeywordConfig(ctx context.Context) (*types.KeywordConfig, error)
	GeoConfig(ctx context.Context) (*types.GeoConfig, error)
	Ruleset(ctx context.Context, name string) (*types.Ruleset, error)
	AISettings(ctx context.Context) (*AISettings, error)
	PromptTemplate(ctx context.Context, id string) (*PromptTemplate, error)
	NotificationConfig(ctx context.Context) (*NotificationConfig, error)
}
