package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one row of the append-only audit trail.
type AuditEntry struct {
	ID       string         `json:"id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity,omitempty"`
	EntityID string         `json:"entity_id,omitempty"`
	Actor    string         `json:"actor,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	TS       time.Time      `json:"ts"`
}

// Audit appends one entry to the audit trail. Entries are never updated
// or deleted.
func (db *DB) Audit(ctx context.Context, action, entity, entityID, actor string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit data: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO audit_log (id, action, entity, entity_id, actor, data)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)`,
		uuid.NewString(), action, entity, entityID, actor, doc)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit entries, newest first.
func (db *DB) ListAudit(ctx context.Context, limit, offset int) ([]AuditEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, action, COALESCE(entity, ''), COALESCE(entity_id, ''), COALESCE(actor, ''), data, ts
		 FROM audit_log ORDER BY ts DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e   AuditEntry
			doc []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Entity, &e.EntityID, &e.Actor, &doc, &e.TS); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		_ = json.Unmarshal(doc, &e.Data)
		out = append(out, e)
	}
	return out, rows.Err()
}
