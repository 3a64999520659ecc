package audit

import (
	"context"
	"database/sql"
	"fmt"

	"myimpact/internal/model"
)

const archiveSchema = `
	CREATE TABLE IF NOT EXISTS audit_events (
		event_id    TEXT PRIMARY KEY,
		seq         BIGINT NOT NULL,
		actor_id    TEXT NOT NULL,
		actor_role  TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		action      TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		notes       TEXT NOT NULL DEFAULT ''
	)`

// Archive persists a durable copy of the audit log. Rows are only ever
// inserted; the same event delivered twice is stored once.
type Archive struct {
	db *sql.DB
}

// NewArchive creates an archive repository. The SQL is portable across
// the pgx and sqlite3 drivers.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// EnsureSchema creates the archive table if missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, archiveSchema); err != nil {
		return fmt.Errorf("create audit_events: %w", err)
	}
	return nil
}

// Insert writes evt unless an event with the same id is already archived.
func (a *Archive) Insert(ctx context.Context, evt model.AuditEvent) error {
	if evt.ID == "" {
		return &model.InvalidArgumentError{Field: "event_id", Reason: "required"}
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO audit_events (event_id, seq, actor_id, actor_role, entity_type, entity_id, action, occurred_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`, evt.ID, evt.Seq, evt.ActorID, string(evt.ActorRole), string(evt.EntityType), evt.EntityID, string(evt.Action), evt.Timestamp, evt.Notes)
	if err != nil {
		return fmt.Errorf("archive audit event %s: %w", evt.ID, err)
	}
	return nil
}

// Recent returns the newest archived events first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT event_id, seq, actor_id, actor_role, entity_type, entity_id, action, occurred_at, notes
		FROM audit_events
		ORDER BY occurred_at DESC, seq DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditEvent
	for rows.Next() {
		var evt model.AuditEvent
		var role, entityType, action string
		if err := rows.Scan(&evt.ID, &evt.Seq, &evt.ActorID, &role, &entityType, &evt.EntityID, &action, &evt.Timestamp, &evt.Notes); err != nil {
			return nil, err
		}
		evt.ActorRole = model.ActorRole(role)
		evt.EntityType = model.EntityType(entityType)
		evt.Action = model.AuditAction(action)
		out = append(out, evt)
	}
	return out, rows.Err()
}
