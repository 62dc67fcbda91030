package configstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-funnel/internal/types"
)

// PG is the Postgres-backed Provider. Singleton documents live as JSONB
// rows in config_docs keyed by document name; prompt templates get their
// own table because they are a list, not a singleton.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG wraps an existing connection pool.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (p *PG) doc(ctx context.Context, key string, out any) (bool, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT doc FROM config_docs WHERE key = $1`, key,
	).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config doc %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode config doc %s: %w", key, err)
	}
	return true, nil
}

// KeywordConfig implements Provider.
func (p *PG) KeywordConfig(ctx context.Context) (*types.KeywordConfig, error) {
	var cfg types.KeywordConfig
	found, err := p.doc(ctx, KeyKeywordSettings, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// GeoConfig implements Provider.
func (p *PG) GeoConfig(ctx context.Context) (*types.GeoConfig, error) {
	var cfg types.GeoConfig
	found, err := p.doc(ctx, KeyGeoFilters, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// Ruleset implements Provider.
func (p *PG) Ruleset(ctx context.Context, name string) (*types.Ruleset, error) {
	var rs types.Ruleset
	found, err := p.doc(ctx, name, &rs)
	if err != nil || !found {
		return nil, err
	}
	return &rs, nil
}

// AISettings implements Provider.
func (p *PG) AISettings(ctx context.Context) (*AISettings, error) {
	var ai AISettings
	found, err := p.doc(ctx, KeyAISettings, &ai)
	if err != nil || !found {
		return nil, err
	}
	return &ai, nil
}

// NotificationConfig implements Provider.
func (p *PG) NotificationConfig(ctx context.Context) (*NotificationConfig, error) {
	var cfg NotificationConfig
	found, err := p.doc(ctx, KeyNotifications, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// PromptTemplate implements Provider. An empty id returns the default
// template.
func (p *PG) PromptTemplate(ctx context.Context, id string) (*PromptTemplate, error) {
	var (
		tpl PromptTemplate
		err error
	)
	if id == "" {
		err = p.pool.QueryRow(ctx,
			`SELECT id, name, template, is_default FROM prompt_templates WHERE is_default ORDER BY updated_at DESC LIMIT 1`,
		).Scan(&tpl.ID, &tpl.Name, &tpl.Template, &tpl.IsDefault)
	} else {
		err = p.pool.QueryRow(ctx,
			`SELECT id, name, template, is_default FROM prompt_templates WHERE id = $1`, id,
		).Scan(&tpl.ID, &tpl.Name, &tpl.Template, &tpl.IsDefault)
	}
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load prompt template: %w", err)
	}
	return &tpl, nil
}

// UpsertDoc validates and stores a singleton configuration document. The
// schema check runs per document kind so a bad op or mode never reaches the
// rule engine.
func (p *PG) UpsertDoc(ctx context.Context, key string, doc []byte) error {
	var validate func([]byte) error
	switch key {
	case RulesetClient, RulesetJob, RulesetRisk:
		validate = ValidateRulesetDoc
	case KeyKeywordSettings:
		validate = ValidateKeywordDoc
	case KeyGeoFilters:
		validate = ValidateGeoDoc
	default:
		validate = func(b []byte) error {
			if !json.Valid(b) {
				return fmt.Errorf("document is not valid JSON")
			}
			return nil
		}
	}
	if err := validate(doc); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO config_docs (key, doc, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET doc = $2, updated_at = NOW()`,
		key, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert config doc %s: %w", key, err)
	}
	return nil
}

// SavePromptTemplate inserts or updates a prompt template.
func (p *PG) SavePromptTemplate(ctx context.Context, tpl *PromptTemplate) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO prompt_templates (id, name, template, is_default, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (id) DO UPDATE SET name = $2, template = $3, is_default = $4, updated_at = NOW()`,
		tpl.ID, tpl.Name, tpl.Template, tpl.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("failed to save prompt template: %w", err)
	}
	return nil
}

// RawDoc returns the stored JSON for a configuration key, with a found
// flag instead of an error for absence.
func (p *PG) RawDoc(ctx context.Context, key string) ([]byte, bool, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM config_docs WHERE key = $1`, key).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load config doc %s: %w", key, err)
	}
	return doc, true, nil
}

// ListPromptTemplates returns all stored prompt templates.
func (p *PG) ListPromptTemplates(ctx context.Context) ([]PromptTemplate, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, template, is_default FROM prompt_templates ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt templates: %w", err)
	}
	defer rows.Close()

	var out []PromptTemplate
	for rows.Next() {
		var tpl PromptTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Template, &tpl.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan prompt template: %w", err)
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}
