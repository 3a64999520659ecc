package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"myimpact/internal/audit"
	"myimpact/internal/metrics"
	"myimpact/internal/model"
	"myimpact/internal/store"
)

// Result describes a finished export.
type Result struct {
	Kind         Kind   `json:"kind"`
	Format       Format `json:"format"`
	FileName     string `json:"file_name"`
	Records      int    `json:"records"`
	AuditEventID string `json:"audit_event_id"`
}

// Service produces exports.
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

var verifiedLogsHeader = []string{
	"student_name", "student_email", "program_name", "term_name",
	"log_date", "hours", "evidence_tier", "status", "description",
}

var auditTrailHeader = []string{
	"event_id", "actor_id", "actor_role", "entity_type",
	"entity_id", "action", "timestamp", "notes",
}

// VerifiedLogs writes every confirmed entry of termID's programs to w.
func (s *Service) VerifiedLogs(ctx context.Context, termID string, f Format, actor model.Actor, w io.Writer) (Result, error) {
	if strings.TrimSpace(termID) == "" {
		return Result{}, &model.InvalidArgumentError{Field: "term_id", Reason: "must not be empty"}
	}
	var (
		t        = table{sheet: "Verified Logs", header: verifiedLogsHeader}
		termName string
	)
	err := s.store.View(func(snap *store.Snapshot) error {
		termName = termID
		if term, ok := snap.Term(termID); ok {
			termName = term.Name
		}
		scope := snap.TermProgramIDs(termID)
		entries := snap.Entries(func(e model.ServiceEntry) bool {
			return scope[e.ProgramID] && e.Status == model.EntryConfirmed
		})
		for _, e := range entries {
			studentName, email, programName := "Unknown", "", "Unknown"
			if st, ok := snap.Student(e.StudentID); ok {
				studentName, email = st.Name, st.Email
			}
			if p, ok := snap.Program(e.ProgramID); ok {
				programName = p.Name
			}
			t.rows = append(t.rows, []any{
				studentName, email, programName, termName,
				e.Date, e.Hours, string(e.EvidenceTier), string(e.Status), e.Description,
			})
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	notes := fmt.Sprintf("Exported verified logs for %s. %d records.", termName, len(t.rows))
	return s.deliver(ctx, KindVerifiedLogs, termID, f, actor, t, notes, w)
}

// AuditTrail writes the whole audit log to w. The event recording this
// export is appended afterwards and is not part of the file.
func (s *Service) AuditTrail(ctx context.Context, termID string, f Format, actor model.Actor, w io.Writer) (Result, error) {
	if strings.TrimSpace(termID) == "" {
		return Result{}, &model.InvalidArgumentError{Field: "term_id", Reason: "must not be empty"}
	}
	var (
		t        = table{sheet: "Audit Trail", header: auditTrailHeader}
		termName string
	)
	err := s.store.View(func(snap *store.Snapshot) error {
		termName = termID
		if term, ok := snap.Term(termID); ok {
			termName = term.Name
		}
		for _, evt := range snap.AuditEvents() {
			t.rows = append(t.rows, []any{
				evt.ID, evt.ActorID, string(evt.ActorRole), string(evt.EntityType),
				evt.EntityID, string(evt.Action), evt.Timestamp, evt.Notes,
			})
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	notes := fmt.Sprintf("Exported audit trail for %s. %d events.", termName, len(t.rows))
	return s.deliver(ctx, KindAuditTrail, termID, f, actor, t, notes, w)
}

// deliver renders t, records the export and only then writes the file to w,
// so an export that fails to render leaves no audit event behind.
func (s *Service) deliver(ctx context.Context, kind Kind, termID string, f Format, actor model.Actor, t table, notes string, w io.Writer) (Result, error) {
	var buf bytes.Buffer
	if err := t.write(&buf, f); err != nil {
		return Result{}, fmt.Errorf("render %s export: %w", kind, err)
	}

	var evt model.AuditEvent
	err := s.store.Update(func(tx *store.Tx) error {
		evt = tx.AppendAudit(audit.NewEvent(s.newID(), actor, model.EntityExport,
			fmt.Sprintf("%s-%s", kind, termID), model.ActionExport, s.now(), notes))
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	metrics.ExportsTotal.WithLabelValues(string(kind), string(f)).Inc()
	metrics.AuditEventsTotal.WithLabelValues(string(evt.Action)).Inc()
	s.log.Infow("export generated", "kind", kind, "term_id", termID, "format", f, "records", len(t.rows), "actor", actor.UserID)
	audit.Forward(ctx, s.sink, s.log, evt)

	if _, err := buf.WriteTo(w); err != nil {
		return Result{}, fmt.Errorf("write %s export: %w", kind, err)
	}
	return Result{
		Kind:         kind,
		Format:       f,
		FileName:     FileName(kind, termID, f),
		Records:      len(t.rows),
		AuditEventID: evt.ID,
	}, nil
}
