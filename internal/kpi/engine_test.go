package kpi

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myimpact/internal/model"
	"myimpact/internal/store"
)

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory(store.DefaultSettings)
	require.NoError(t, store.Seed(m, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	return m
}

func TestComputeKPIsCurrentTermComparesToPrior(t *testing.T) {
	en := NewEngine(seeded(t), Config{CurrentTerm: "spring-2026"})

	got, err := en.ComputeKPIs("spring-2026")
	require.NoError(t, err)
	assert.Equal(t, Metric{Value: 12.5, Delta: "+108% vs Fall 2025"}, got.VerifiedHours)
	assert.Equal(t, Metric{Value: 3, Delta: "+200% vs Fall 2025"}, got.ActiveStudents)
	assert.Equal(t, Metric{Value: 3, Delta: "+1 vs Fall 2025"}, got.ActivePrograms)
	assert.Equal(t, Metric{Value: 100, Delta: "+0 pts vs Fall 2025"}, got.RetentionRate)
}

func TestComputeKPIsOtherTermRestatesValues(t *testing.T) {
	en := NewEngine(seeded(t), Config{CurrentTerm: "spring-2026"})

	got, err := en.ComputeKPIs("fall-2025")
	require.NoError(t, err)
	assert.Equal(t, Metric{Value: 6, Delta: "6 verified hours"}, got.VerifiedHours)
	assert.Equal(t, Metric{Value: 1, Delta: "1 active students"}, got.ActiveStudents)
	assert.Equal(t, Metric{Value: 2, Delta: "2 programs"}, got.ActivePrograms)
	assert.Equal(t, Metric{Value: 100, Delta: "100% retained"}, got.RetentionRate)
}

func TestComputeKPIsEmptyAndUnknownTerms(t *testing.T) {
	en := NewEngine(seeded(t), Config{CurrentTerm: "spring-2026"})

	summer, err := en.ComputeKPIs("summer-2026")
	require.NoError(t, err)
	assert.Zero(t, summer.VerifiedHours.Value)
	assert.Zero(t, summer.ActiveStudents.Value)
	assert.Equal(t, 1.0, summer.ActivePrograms.Value)
	assert.Zero(t, summer.RetentionRate.Value)

	unknown, err := en.ComputeKPIs("winter-2030")
	require.NoError(t, err)
	assert.Zero(t, unknown.VerifiedHours.Value)
	assert.Zero(t, unknown.ActiveStudents.Value)
	assert.Zero(t, unknown.ActivePrograms.Value)
	assert.Zero(t, unknown.RetentionRate.Value)
}

func TestComputeKPIsIsIdempotent(t *testing.T) {
	en := NewEngine(seeded(t), Config{CurrentTerm: "spring-2026"})
	first, err := en.ComputeKPIs("spring-2026")
	require.NoError(t, err)
	second, err := en.ComputeKPIs("spring-2026")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRetentionStaysWithinRange(t *testing.T) {
	m := store.NewMemory(store.DefaultSettings)
	require.NoError(t, m.Update(func(tx *store.Tx) error {
		require.NoError(t, tx.PutTerm(model.Term{ID: "t1", Name: "T1", StartDate: "2026-01-01"}))
		require.NoError(t, tx.PutProgram(model.Program{ID: "p1", Name: "P1", Type: model.ProgramCampus, TermID: "t1"}))
		for i := 0; i < 3; i++ {
			status := model.EntryPending
			if i == 0 {
				status = model.EntryConfirmed
			}
			require.NoError(t, tx.PutEntry(model.ServiceEntry{
				ID: fmt.Sprintf("e%d", i), StudentID: fmt.Sprintf("s%d", i), ProgramID: "p1",
				Hours: 1, Status: status, EvidenceTier: model.EvidenceSelfReported,
			}))
		}
		return nil
	}))

	got, err := NewEngine(m, Config{}).ComputeKPIs("t1")
	require.NoError(t, err)
	assert.Equal(t, 33.0, got.RetentionRate.Value)
	assert.GreaterOrEqual(t, got.RetentionRate.Value, 0.0)
	assert.LessOrEqual(t, got.RetentionRate.Value, 100.0)
}

func TestPctChange(t *testing.T) {
	cases := []struct {
		cur, prev int64
		want      string
	}{
		{cur: 12, prev: 10, want: "+20%"},
		{cur: 8, prev: 10, want: "-20%"},
		{cur: 10, prev: 10, want: "+0%"},
		{cur: 5, prev: 0, want: "+0%"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, pctChange(decimal.NewFromInt(tc.cur), decimal.NewFromInt(tc.prev)))
		})
	}
}

func TestStudentStatsScopedToTerm(t *testing.T) {
	en := NewEngine(seeded(t), Config{CurrentTerm: "spring-2026"})

	st, err := en.StudentStats("std-001", "spring-2026")
	require.NoError(t, err)
	assert.Equal(t, "Lily Robbins", st.Name)
	assert.Equal(t, 7.0, st.TotalHours)
	assert.Equal(t, 4.0, st.VerifiedHours)
	assert.Equal(t, 3.0, st.PendingHours)
	assert.Equal(t, 57.1, st.PercentVerified)
	assert.Equal(t, 20.0, st.RequiredHours)
	assert.Equal(t, 20.0, st.Progress)
	assert.Equal(t, RiskAtRisk, st.RiskStatus)
	assert.Len(t, st.Entries, 2)

	all, err := en.StudentStats("std-001", "")
	require.NoError(t, err)
	assert.Equal(t, 10.0, all.VerifiedHours)
	assert.Equal(t, 50.0, all.Progress)
	assert.Equal(t, RiskOnTrack, all.RiskStatus)
}

func TestStudentStatsThresholdBoundaries(t *testing.T) {
	en := NewEngine(seeded(t), Config{})
	assert.Equal(t, RiskOnTrack, en.classify(50))
	assert.Equal(t, RiskNeedsAttention, en.classify(49.9))
	assert.Equal(t, RiskNeedsAttention, en.classify(25))
	assert.Equal(t, RiskAtRisk, en.classify(24.9))

	st, err := en.StudentStats("std-003", "spring-2026")
	require.NoError(t, err)
	assert.Equal(t, 25.0, st.Progress)
	assert.Equal(t, RiskNeedsAttention, st.RiskStatus)
}

func TestStudentStatsClassifiesBeforeRounding(t *testing.T) {
	cases := []struct {
		hours    float64
		progress float64
		want     RiskStatus
	}{
		{hours: 9.99, progress: 50.0, want: RiskNeedsAttention},
		{hours: 10, progress: 50.0, want: RiskOnTrack},
		{hours: 4.99, progress: 25.0, want: RiskAtRisk},
		{hours: 5, progress: 25.0, want: RiskNeedsAttention},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%.2fh", tc.hours), func(t *testing.T) {
			m := seeded(t)
			require.NoError(t, m.Update(func(tx *store.Tx) error {
				return tx.PutEntry(model.ServiceEntry{
					ID: "log-200", StudentID: "std-004", ProgramID: "csc-001", Hours: tc.hours,
					Status: model.EntryConfirmed, EvidenceTier: model.EvidenceOrgConfirmed,
				})
			}))
			st, err := NewEngine(m, Config{}).StudentStats("std-004", "spring-2026")
			require.NoError(t, err)
			assert.Equal(t, 20.0, st.RequiredHours)
			assert.Equal(t, tc.progress, st.Progress)
			assert.Equal(t, tc.want, st.RiskStatus)
		})
	}
}

func TestStudentStatsUsesTermRequirement(t *testing.T) {
	m := seeded(t)
	require.NoError(t, m.Update(func(tx *store.Tx) error {
		return tx.PutEntry(model.ServiceEntry{
			ID: "log-100", StudentID: "std-005", ProgramID: "summer-prog", Hours: 5,
			Status: model.EntryConfirmed, EvidenceTier: model.EvidenceOrgConfirmed,
		})
	}))
	st, err := NewEngine(m, Config{}).StudentStats("std-005", "summer-2026")
	require.NoError(t, err)
	assert.Equal(t, 10.0, st.RequiredHours)
	assert.Equal(t, 50.0, st.Progress)
	assert.Equal(t, RiskOnTrack, st.RiskStatus)
}

func TestStudentStatsNoEntries(t *testing.T) {
	st, err := NewEngine(seeded(t), Config{}).StudentStats("std-004", "spring-2026")
	require.NoError(t, err)
	assert.Zero(t, st.TotalHours)
	assert.Zero(t, st.PercentVerified)
	assert.Equal(t, RiskAtRisk, st.RiskStatus)
}

func TestStudentStatsNotFound(t *testing.T) {
	en := NewEngine(seeded(t), Config{})
	_, err := en.StudentStats("std-404", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = en.StudentStats("std-001", "winter-2030")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStudentsForTerm(t *testing.T) {
	en := NewEngine(seeded(t), Config{})

	spring, err := en.StudentsForTerm("spring-2026")
	require.NoError(t, err)
	ids := make([]string, 0, len(spring))
	for _, st := range spring {
		ids = append(ids, st.ID)
	}
	assert.Equal(t, []string{"std-001", "std-002", "std-003", "std-004", "std-005"}, ids)

	fall, err := en.StudentsForTerm("fall-2025")
	require.NoError(t, err)
	require.Len(t, fall, 1)
	assert.Equal(t, 6.0, fall[0].VerifiedHours)

	summer, err := en.StudentsForTerm("summer-2026")
	require.NoError(t, err)
	assert.Empty(t, summer)
}

func TestProgramStats(t *testing.T) {
	en := NewEngine(seeded(t), Config{})

	ps, err := en.ProgramStats("csc-001")
	require.NoError(t, err)
	assert.Equal(t, "Columbia Service Corps", ps.Name)
	assert.Equal(t, 7.0, ps.TotalHours)
	assert.Equal(t, 4.0, ps.VerifiedHours)
	assert.Equal(t, 57.1, ps.PercentVerified)
	assert.Equal(t, 1, ps.PendingRequests)
	assert.Equal(t, 2, ps.ActiveStudentsCount)
	require.Len(t, ps.Students, 2)
	assert.Equal(t, "std-001", ps.Students[0].ID)

	_, err = en.ProgramStats("nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestProgramStatsPreviewIsCapped(t *testing.T) {
	m := seeded(t)
	require.NoError(t, m.Update(func(tx *store.Tx) error {
		for i := 0; i < 15; i++ {
			if err := tx.PutStudent(model.Student{ID: fmt.Sprintf("bulk-%02d", i), Name: "Bulk", ProgramIDs: []string{"gi-fall"}}); err != nil {
				return err
			}
		}
		return nil
	}))
	ps, err := NewEngine(m, Config{}).ProgramStats("gi-fall")
	require.NoError(t, err)
	assert.Equal(t, 15, ps.ActiveStudentsCount)
	assert.Len(t, ps.Students, 10)
}

func TestProgramsRecountsEnrolment(t *testing.T) {
	programs, err := NewEngine(seeded(t), Config{}).Programs("spring-2026")
	require.NoError(t, err)
	counts := map[string]int{}
	for _, p := range programs {
		counts[p.ID] = p.ActiveStudentsCount
	}
	assert.Equal(t, map[string]int{"csc-001": 2, "gi-002": 2, "hno-003": 2}, counts)
}

func TestTerms(t *testing.T) {
	en := NewEngine(seeded(t), Config{})
	terms, err := en.Terms()
	require.NoError(t, err)
	require.Len(t, terms, 3)
	assert.Equal(t, "fall-2025", terms[0].ID)
	assert.Equal(t, "summer-2026", terms[2].ID)

	term, err := en.Term("summer-2026")
	require.NoError(t, err)
	assert.Equal(t, 10.0, term.RequiredHours)

	_, err = en.Term("nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
