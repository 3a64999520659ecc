// Package kpi derives term, student and program statistics from the
// current contents of the record store. Every call reads a fresh
// consistent snapshot; nothing is cached.
package kpi

import (
	"math"

	"github.com/shopspring/decimal"

	"myimpact/internal/metrics"
	"myimpact/internal/model"
	"myimpact/internal/store"
)

// Config holds the fixed requirement and classification thresholds.
type Config struct {
	// CurrentTerm is the term whose deltas compare against the prior term.
	CurrentTerm string
	// RequiredHours applies when a term does not set its own requirement.
	RequiredHours           float64
	OnTrackThreshold        float64
	NeedsAttentionThreshold float64
	// PreviewSize caps the enrolled-student preview in program stats.
	PreviewSize int
}

func (c Config) withDefaults() Config {
	if c.RequiredHours <= 0 {
		c.RequiredHours = 20
	}
	if c.OnTrackThreshold == 0 && c.NeedsAttentionThreshold == 0 {
		c.OnTrackThreshold = 50
		c.NeedsAttentionThreshold = 25
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 10
	}
	return c
}

// Metric is a KPI value with its human-readable delta.
type Metric struct {
	Value float64 `json:"value"`
	Delta string  `json:"delta"`
}

// KPIs is the dashboard bundle for one term.
type KPIs struct {
	VerifiedHours  Metric `json:"verified_hours"`
	ActiveStudents Metric `json:"active_students"`
	ActivePrograms Metric `json:"active_programs"`
	RetentionRate  Metric `json:"retention_rate"`
}

// Engine computes statistics over a store.
type Engine struct {
	store *store.Memory
	cfg   Config
}

// NewEngine creates an engine over st.
func NewEngine(st *store.Memory, cfg Config) *Engine {
	return &Engine{store: st, cfg: cfg.withDefaults()}
}

// termTotals are the raw aggregates behind a KPI bundle.
type termTotals struct {
	term           model.Term
	verifiedHours  decimal.Decimal
	activeStudents int
	activePrograms int
	retention      int
}

func computeTotals(snap *store.Snapshot, termID string) termTotals {
	t := termTotals{verifiedHours: decimal.Zero}
	t.term, _ = snap.Term(termID)
	if termID == "" {
		return t
	}
	scope := snap.TermProgramIDs(termID)
	t.activePrograms = len(scope)
	if len(scope) == 0 {
		return t
	}

	active := make(map[string]bool)
	retained := make(map[string]bool)
	for _, e := range snap.Entries(func(e model.ServiceEntry) bool { return scope[e.ProgramID] }) {
		active[e.StudentID] = true
		if e.Status == model.EntryConfirmed {
			t.verifiedHours = t.verifiedHours.Add(decimal.NewFromFloat(e.Hours))
			retained[e.StudentID] = true
		}
	}
	t.activeStudents = len(active)
	if t.activeStudents > 0 {
		t.retention = int(math.Round(100 * float64(len(retained)) / float64(t.activeStudents)))
	}
	return t
}

// ComputeKPIs returns the KPI bundle for termID. An unknown term, or a term
// without programs, yields zero values rather than an error.
func (en *Engine) ComputeKPIs(termID string) (KPIs, error) {
	var out KPIs
	err := en.store.View(func(snap *store.Snapshot) error {
		cur := computeTotals(snap, termID)

		var prior *termTotals
		if termID != "" && termID == en.cfg.CurrentTerm {
			if prev, ok := priorTerm(snap.Terms(), termID); ok {
				p := computeTotals(snap, prev.ID)
				prior = &p
			}
		}

		out = KPIs{
			VerifiedHours:  Metric{Value: cur.verifiedHours.Round(1).InexactFloat64()},
			ActiveStudents: Metric{Value: float64(cur.activeStudents)},
			ActivePrograms: Metric{Value: float64(cur.activePrograms)},
			RetentionRate:  Metric{Value: float64(cur.retention)},
		}
		out.VerifiedHours.Delta = deltaRules[kpiVerifiedHours].render(cur, prior)
		out.ActiveStudents.Delta = deltaRules[kpiActiveStudents].render(cur, prior)
		out.ActivePrograms.Delta = deltaRules[kpiActivePrograms].render(cur, prior)
		out.RetentionRate.Delta = deltaRules[kpiRetentionRate].render(cur, prior)
		return nil
	})
	if err == nil {
		metrics.KPIComputationsTotal.Inc()
	}
	return out, err
}

// priorTerm returns the term immediately before termID in start-date order.
func priorTerm(ordered []model.Term, termID string) (model.Term, bool) {
	for i, t := range ordered {
		if t.ID == termID {
			if i == 0 {
				return model.Term{}, false
			}
			return ordered[i-1], true
		}
	}
	return model.Term{}, false
}

func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Mul(decimal.NewFromInt(100)).Div(whole).Round(1).InexactFloat64()
}
