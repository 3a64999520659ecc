// Package settings reads and edits the dashboard-wide settings record.
package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"myimpact/internal/audit"
	"myimpact/internal/metrics"
	"myimpact/internal/model"
	"myimpact/internal/store"
)

// EntityID is the audit entity id used for every settings edit.
const EntityID = "settings"

// UpdateRequest is the body of a settings edit.
type UpdateRequest struct {
	UniversityName string `json:"university_name"`
	DashboardTitle string `json:"dashboard_title"`
}

// Service guards the settings record.
type Service struct {
	store *store.Memory
	sink  audit.Sink
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
}

// NewService creates a service over st. sink may be nil.
func NewService(st *store.Memory, sink audit.Sink, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{store: st, sink: sink, log: log, now: time.Now, newID: uuid.NewString}
}

// Get returns the current settings.
func (s *Service) Get() (model.Settings, error) {
	var out model.Settings
	err := s.store.View(func(snap *store.Snapshot) error {
		out = snap.Settings()
		return nil
	})
	return out, err
}

// Update replaces the university name and, when given, the dashboard title.
// The change and its audit event are committed together.
func (s *Service) Update(ctx context.Context, actor model.Actor, req UpdateRequest) (model.Settings, error) {
	name := strings.TrimSpace(req.UniversityName)
	if name == "" {
		return model.Settings{}, &model.InvalidArgumentError{Field: "university_name", Value: req.UniversityName, Reason: "must not be empty"}
	}

	var (
		out model.Settings
		evt model.AuditEvent
	)
	err := s.store.Update(func(tx *store.Tx) error {
		out = tx.Settings()
		out.UniversityName = name
		if title := strings.TrimSpace(req.DashboardTitle); title != "" {
			out.DashboardTitle = title
		}
		tx.PutSettings(out)
		evt = tx.AppendAudit(audit.NewEvent(s.newID(), actor, model.EntitySettings, EntityID, model.ActionEdit, s.now(),
			fmt.Sprintf("University name changed to: %s", name)))
		return nil
	})
	if err != nil {
		return model.Settings{}, err
	}

	metrics.AuditEventsTotal.WithLabelValues(string(evt.Action)).Inc()
	s.log.Infow("settings updated", "actor", actor.UserID, "audit_event_id", evt.ID)
	audit.Forward(ctx, s.sink, s.log, evt)
	return out, nil
}
