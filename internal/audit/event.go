// Package audit builds, queries, fans out and archives audit events.
//
// The log itself lives in the record store and is append-only: events are
// appended in the same store transaction as the change they describe, and
// nothing in this package can edit or remove one.
package audit

import (
	"time"

	"myimpact/internal/model"
)

// NewEvent builds an event attributed to actor. Seq is assigned on append.
func NewEvent(id string, actor model.Actor, entityType model.EntityType, entityID string, action model.AuditAction, at time.Time, notes string) model.AuditEvent {
	role := actor.Role
	if role == "" {
		role = model.RoleSystem
	}
	return model.AuditEvent{
		ID:         id,
		ActorID:    actor.UserID,
		ActorRole:  role,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Timestamp:  at.UTC(),
		Notes:      notes,
	}
}
