package configstore

import (
	"context"
	"sync"

	"github.com/jonathan/job-funnel/internal/types"
)

// Memory is an in-memory Provider used by tests and by the convert CLI,
// where no database is involved. The zero value is usable and returns nil
// for every document.
type Memory struct {
	mu            sync.RWMutex
	Keywords      *types.KeywordConfig
	Geo           *types.GeoConfig
	Rulesets      map[string]*types.Ruleset
	AI            *AISettings
	Prompts       []PromptTemplate
	Notifications *NotificationConfig
}

// KeywordConfig implements Provider.
func (m *Memory) KeywordConfig(context.Context) (*types.KeywordConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Keywords, nil
}

// GeoConfig implements Provider.
func (m *Memory) GeoConfig(context.Context) (*types.GeoConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Geo, nil
}

// Ruleset implements Provider.
func (m *Memory) Ruleset(_ context.Context, name string) (*types.Ruleset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Rulesets[name], nil
}

// AISettings implements Provider.
func (m *Memory) AISettings(context.Context) (*AISettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AI, nil
}

// PromptTemplate implements Provider. An empty id returns the default
// template, if any.
func (m *Memory) PromptTemplate(_ context.Context, id string) (*PromptTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.Prompts {
		if (id == "" && m.Prompts[i].IsDefault) || (id != "" && m.Prompts[i].ID == id) {
			return &m.Prompts[i], nil
		}
	}
	return nil, nil
}

// NotificationConfig implements Provider.
func (m *Memory) NotificationConfig(context.Context) (*NotificationConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Notifications, nil
}

// SetRuleset stores a ruleset under name, creating the map lazily.
func (m *Memory) SetRuleset(name string, rs *types.Ruleset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Rulesets == nil {
		m.Rulesets = make(map[string]*types.Ruleset)
	}
	m.Rulesets[name] = rs
}
