// Package verification applies reviewer decisions to service entries.
//
// A decision moves a ServiceEntry and its VerificationRequest together and
// appends one audit event, all inside a single store transaction:
//
//	entry   pending -> confirmed | rejected | flagged
//	request awaiting_confirmation -> confirmed | rejected
//
// Flagging has no request-side state of its own. The request is moved to
// rejected so it leaves the review queue, and only the entry records that it
// was flagged.
//
// Transitions are not guarded against re-application. Deciding an already
// decided request again succeeds, appends another audit event and moves the
// entry's updated_at (last writer wins).
package verification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"myimpact/internal/audit"
	"myimpact/internal/metrics"
	"myimpact/internal/model"
	"myimpact/internal/store"
)

// ConfirmResult is returned by Confirm.
type ConfirmResult struct {
	Success      bool    `json:"success"`
	AuditEventID string  `json:"audit_event_id"`
	HoursAdded   float64 `json:"hours_added"`
}

// RejectResult is returned by Reject.
type RejectResult struct {
	Success      bool                  `json:"success"`
	Reason       model.RejectionReason `json:"reason"`
	AuditEventID string                `json:"audit_event_id"`
}

// FlagResult is returned by Flag.
type FlagResult struct {
	Success      bool   `json:"success"`
	AuditEventID string `json:"audit_event_id"`
}

// Service applies verification decisions.
type Service struct {
	store *store.Memory
	sink  audit.Sink
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithSink forwards committed audit events to sink.
func WithSink(sink audit.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides the audit event id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a service over st.
func NewService(st *store.Memory, log *zap.SugaredLogger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Service{
		store: st,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirm credits the entry's hours: the entry becomes confirmed with
// org_confirmed evidence and the request becomes confirmed.
func (s *Service) Confirm(ctx context.Context, requestID string, actor model.Actor) (ConfirmResult, error) {
	var hours float64
	evt, err := s.transition(ctx, requestID, actor, func(e *model.ServiceEntry, r *model.VerificationRequest) (model.AuditAction, string) {
		e.Status = model.EntryConfirmed
		e.EvidenceTier = model.EvidenceOrgConfirmed
		r.Status = model.RequestConfirmed
		hours = e.Hours
		return model.ActionConfirm, fmt.Sprintf("Confirmed by %s. Log ID: %s, Hours: %s", actor.Name, e.ID, formatHours(e.Hours))
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{Success: true, AuditEventID: evt.ID, HoursAdded: hours}, nil
}

// Reject declines the entry for one of the enumerated reasons. The reason
// is checked before anything is looked up or written.
func (s *Service) Reject(ctx context.Context, requestID string, reason model.RejectionReason, actor model.Actor) (RejectResult, error) {
	if !reason.Valid() {
		return RejectResult{}, &model.InvalidArgumentError{Field: "reason", Value: string(reason), Reason: "not a recognised rejection reason"}
	}
	evt, err := s.transition(ctx, requestID, actor, func(e *model.ServiceEntry, r *model.VerificationRequest) (model.AuditAction, string) {
		e.Status = model.EntryRejected
		r.Status = model.RequestRejected
		return model.ActionReject, fmt.Sprintf("Rejected by %s. Reason: %s. Log ID: %s", actor.Name, reason, e.ID)
	})
	if err != nil {
		return RejectResult{}, err
	}
	return RejectResult{Success: true, Reason: reason, AuditEventID: evt.ID}, nil
}

// Flag marks the entry for follow-up with a free-text reason. The request
// is moved to rejected, not to a flagged state: see the package comment.
func (s *Service) Flag(ctx context.Context, requestID, reason string, actor model.Actor) (FlagResult, error) {
	evt, err := s.transition(ctx, requestID, actor, func(e *model.ServiceEntry, r *model.VerificationRequest) (model.AuditAction, string) {
		e.Status = model.EntryFlagged
		r.Status = model.RequestRejected
		return model.ActionFlag, fmt.Sprintf("Flagged by %s. Reason: %s. Log ID: %s", actor.Name, reason, e.ID)
	})
	if err != nil {
		return FlagResult{}, err
	}
	return FlagResult{Success: true, AuditEventID: evt.ID}, nil
}

type applyFunc func(*model.ServiceEntry, *model.VerificationRequest) (model.AuditAction, string)

func (s *Service) transition(ctx context.Context, requestID string, actor model.Actor, apply applyFunc) (model.AuditEvent, error) {
	var evt model.AuditEvent
	err := s.store.Update(func(tx *store.Tx) error {
		req, ok := tx.Request(requestID)
		if !ok {
			return model.NotFound("verification request", requestID)
		}
		entry, ok := tx.Entry(req.EntryID)
		if !ok {
			return model.NotFound("service entry", req.EntryID)
		}

		now := s.now().UTC()
		action, notes := apply(&entry, &req)
		entry.UpdatedAt = now

		if err := tx.PutEntry(entry); err != nil {
			return err
		}
		if err := tx.PutRequest(req); err != nil {
			return err
		}
		evt = tx.AppendAudit(audit.NewEvent(s.newID(), actor, model.EntityVerificationRequest, req.ID, action, now, notes))
		return nil
	})
	if err != nil {
		return model.AuditEvent{}, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(evt.Action)).Inc()
	metrics.AuditEventsTotal.WithLabelValues(string(evt.Action)).Inc()
	s.log.Infow("verification decision applied",
		"request_id", requestID,
		"action", evt.Action,
		"actor", actor.UserID,
		"audit_event_id", evt.ID,
		"seq", evt.Seq,
	)
	audit.Forward(ctx, s.sink, s.log, evt)
	return evt, nil
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
