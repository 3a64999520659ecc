package kpi

import (
	"github.com/shopspring/decimal"

	"myimpact/internal/model"
	"myimpact/internal/store"
)

// RiskStatus classifies a student's progress toward the requirement.
type RiskStatus string

const (
	RiskOnTrack        RiskStatus = "on_track"
	RiskNeedsAttention RiskStatus = "needs_attention"
	RiskAtRisk         RiskStatus = "at_risk"
)

// StudentStats is one student's standing within a term.
type StudentStats struct {
	model.Student
	TermID          string               `json:"term_id,omitempty"`
	TotalHours      float64              `json:"total_hours"`
	VerifiedHours   float64              `json:"verified_hours"`
	PendingHours    float64              `json:"pending_hours"`
	PercentVerified float64              `json:"percent_verified"`
	RequiredHours   float64              `json:"required_hours"`
	Progress        float64              `json:"progress"`
	RiskStatus      RiskStatus           `json:"risk_status"`
	Entries         []model.ServiceEntry `json:"logs"`
}

// ProgramStats is a program with its derived hour totals.
type ProgramStats struct {
	model.Program
	TotalHours      float64         `json:"total_hours"`
	VerifiedHours   float64         `json:"verified_hours"`
	PercentVerified float64         `json:"percent_verified"`
	PendingRequests int             `json:"pending_requests"`
	Students        []model.Student `json:"students"`
}

// classify maps progress (percent of required hours) to a risk status.
func (en *Engine) classify(progress float64) RiskStatus {
	switch {
	case progress >= en.cfg.OnTrackThreshold:
		return RiskOnTrack
	case progress >= en.cfg.NeedsAttentionThreshold:
		return RiskNeedsAttention
	default:
		return RiskAtRisk
	}
}

func (en *Engine) requiredFor(snap *store.Snapshot, termID string) float64 {
	if t, ok := snap.Term(termID); ok && t.RequiredHours > 0 {
		return t.RequiredHours
	}
	return en.cfg.RequiredHours
}

// studentStats must run inside a View. scope nil means every program.
func (en *Engine) studentStats(snap *store.Snapshot, st model.Student, termID string, scope map[string]bool) StudentStats {
	entries := snap.Entries(func(e model.ServiceEntry) bool {
		return e.StudentID == st.ID && (scope == nil || scope[e.ProgramID])
	})
	total, verified, pending := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range entries {
		h := decimal.NewFromFloat(e.Hours)
		total = total.Add(h)
		switch e.Status {
		case model.EntryConfirmed:
			verified = verified.Add(h)
		case model.EntryPending:
			pending = pending.Add(h)
		}
	}

	required := en.requiredFor(snap, termID)
	requiredDec := decimal.NewFromFloat(required)
	// Classify on the exact ratio; only the reported figure is rounded.
	exact := 0.0
	if !requiredDec.IsZero() {
		exact = verified.Mul(decimal.NewFromInt(100)).Div(requiredDec).InexactFloat64()
	}
	return StudentStats{
		Student:         st,
		TermID:          termID,
		TotalHours:      total.Round(1).InexactFloat64(),
		VerifiedHours:   verified.Round(1).InexactFloat64(),
		PendingHours:    pending.Round(1).InexactFloat64(),
		PercentVerified: percentOf(verified, total),
		RequiredHours:   required,
		Progress:        percentOf(verified, requiredDec),
		RiskStatus:      en.classify(exact),
		Entries:         entries,
	}
}

// StudentStats returns a student's standing, scoped to termID when set.
func (en *Engine) StudentStats(studentID, termID string) (StudentStats, error) {
	var out StudentStats
	err := en.store.View(func(snap *store.Snapshot) error {
		st, ok := snap.Student(studentID)
		if !ok {
			return model.NotFound("student", studentID)
		}
		var scope map[string]bool
		if termID != "" {
			if _, ok := snap.Term(termID); !ok {
				return model.NotFound("term", termID)
			}
			scope = snap.TermProgramIDs(termID)
		}
		out = en.studentStats(snap, st, termID, scope)
		return nil
	})
	return out, err
}

// StudentsForTerm returns stats for every student enrolled in one of the
// term's programs. An empty termID lists every student over all terms.
func (en *Engine) StudentsForTerm(termID string) ([]StudentStats, error) {
	var out []StudentStats
	err := en.store.View(func(snap *store.Snapshot) error {
		var scope map[string]bool
		if termID != "" {
			if _, ok := snap.Term(termID); !ok {
				return model.NotFound("term", termID)
			}
			scope = snap.TermProgramIDs(termID)
		}
		students := snap.Students(func(st model.Student) bool {
			if scope == nil {
				return true
			}
			for _, pid := range st.ProgramIDs {
				if scope[pid] {
					return true
				}
			}
			return false
		})
		out = make([]StudentStats, 0, len(students))
		for _, st := range students {
			out = append(out, en.studentStats(snap, st, termID, scope))
		}
		return nil
	})
	return out, err
}

// Programs lists the programs of termID (all when empty) with the active
// student count recomputed from enrolments.
func (en *Engine) Programs(termID string) ([]model.Program, error) {
	var out []model.Program
	err := en.store.View(func(snap *store.Snapshot) error {
		out = snap.Programs(func(p model.Program) bool { return termID == "" || p.TermID == termID })
		for i := range out {
			out[i].ActiveStudentsCount = len(enrolled(snap, out[i].ID))
		}
		return nil
	})
	return out, err
}

// ProgramStats returns hour totals for a program plus a preview of its
// enrolled students.
func (en *Engine) ProgramStats(programID string) (ProgramStats, error) {
	var out ProgramStats
	err := en.store.View(func(snap *store.Snapshot) error {
		p, ok := snap.Program(programID)
		if !ok {
			return model.NotFound("program", programID)
		}
		total, verified := decimal.Zero, decimal.Zero
		for _, e := range snap.Entries(func(e model.ServiceEntry) bool { return e.ProgramID == programID }) {
			h := decimal.NewFromFloat(e.Hours)
			total = total.Add(h)
			if e.Status == model.EntryConfirmed {
				verified = verified.Add(h)
			}
		}
		pending := snap.Requests(func(r model.VerificationRequest) bool {
			return r.ProgramID == programID && r.Status == model.RequestAwaiting
		})

		students := enrolled(snap, programID)
		p.ActiveStudentsCount = len(students)
		if len(students) > en.cfg.PreviewSize {
			students = students[:en.cfg.PreviewSize]
		}
		out = ProgramStats{
			Program:         p,
			TotalHours:      total.Round(1).InexactFloat64(),
			VerifiedHours:   verified.Round(1).InexactFloat64(),
			PercentVerified: percentOf(verified, total),
			PendingRequests: len(pending),
			Students:        students,
		}
		return nil
	})
	return out, err
}

func enrolled(snap *store.Snapshot, programID string) []model.Student {
	return snap.Students(func(st model.Student) bool { return st.EnrolledIn(programID) })
}

// Terms lists every term in start-date order.
func (en *Engine) Terms() ([]model.Term, error) {
	var out []model.Term
	err := en.store.View(func(snap *store.Snapshot) error {
		out = snap.Terms()
		return nil
	})
	return out, err
}

// Term returns one term.
func (en *Engine) Term(id string) (model.Term, error) {
	var out model.Term
	err := en.store.View(func(snap *store.Snapshot) error {
		t, ok := snap.Term(id)
		if !ok {
			return model.NotFound("term", id)
		}
		out = t
		return nil
	})
	return out, err
}
