package store

import (
	"time"

	"myimpact/internal/model"
)

// DefaultSettings are used when no settings have been configured.
var DefaultSettings = model.Settings{
	UniversityName: "Columbia University",
	DashboardTitle: "Test Pilot Dashboard",
}

// Seed loads the demo dataset: three terms, six programs, five students,
// seven service entries and three requests awaiting confirmation.
func Seed(m *Memory, now time.Time) error {
	now = now.UTC()
	return m.Update(func(tx *Tx) error {
		terms := []model.Term{
			{ID: "fall-2025", Name: "Fall 2025", StartDate: "2025-09-01", EndDate: "2025-12-15", RequiredHours: 20},
			{ID: "spring-2026", Name: "Spring 2026", StartDate: "2026-01-15", EndDate: "2026-05-15", RequiredHours: 20},
			{ID: "summer-2026", Name: "Summer 2026", StartDate: "2026-06-01", EndDate: "2026-08-15", RequiredHours: 10},
		}
		for _, t := range terms {
			if err := tx.PutTerm(t); err != nil {
				return err
			}
		}

		programs := []model.Program{
			{ID: "csc-001", Name: "Columbia Service Corps", Type: model.ProgramCampus, TermID: "spring-2026", Icon: "heart", ActiveStudentsCount: 420},
			{ID: "gi-002", Name: "Green Initiative", Type: model.ProgramCampus, TermID: "spring-2026", Icon: "leaf", ActiveStudentsCount: 315},
			{ID: "hno-003", Name: "Hope NYC Outreach", Type: model.ProgramNGOPartner, TermID: "spring-2026", Icon: "hands-helping", ActiveStudentsCount: 399},
			{ID: "csc-fall", Name: "Columbia Service Corps", Type: model.ProgramCampus, TermID: "fall-2025", Icon: "heart", ActiveStudentsCount: 380},
			{ID: "gi-fall", Name: "Green Initiative", Type: model.ProgramCampus, TermID: "fall-2025", Icon: "leaf", ActiveStudentsCount: 290},
			{ID: "summer-prog", Name: "Summer Volunteer Program", Type: model.ProgramCampus, TermID: "summer-2026", Icon: "sun", ActiveStudentsCount: 150},
		}
		for _, p := range programs {
			if err := tx.PutProgram(p); err != nil {
				return err
			}
		}

		students := []model.Student{
			{ID: "std-001", Name: "Lily Robbins", Email: "lily.robbins@columbia.edu", ProgramIDs: []string{"csc-001", "csc-fall"}, Avatar: "LR"},
			{ID: "std-002", Name: "Tai Chen", Email: "tai.chen@columbia.edu", ProgramIDs: []string{"gi-002"}, Avatar: "TC"},
			{ID: "std-003", Name: "Sacha Lewiner", Email: "sacha.lewiner@columbia.edu", ProgramIDs: []string{"hno-003"}, Avatar: "SL"},
			{ID: "std-004", Name: "Maria Garcia", Email: "maria.garcia@columbia.edu", ProgramIDs: []string{"csc-001", "gi-002"}, Avatar: "MG"},
			{ID: "std-005", Name: "James Wilson", Email: "james.wilson@columbia.edu", ProgramIDs: []string{"hno-003"}, Avatar: "JW"},
		}
		for _, st := range students {
			if err := tx.PutStudent(st); err != nil {
				return err
			}
		}

		entry := func(id, student, program, date string, hours float64, desc string, status model.EntryStatus) model.ServiceEntry {
			tier := model.EvidenceSelfReported
			if status == model.EntryConfirmed {
				tier = model.EvidenceOrgConfirmed
			}
			return model.ServiceEntry{
				ID: id, StudentID: student, ProgramID: program, Date: date, Hours: hours,
				Description: desc, EvidenceTier: tier, Status: status, CreatedAt: now, UpdatedAt: now,
			}
		}
		entries := []model.ServiceEntry{
			entry("log-001", "std-001", "csc-001", "2026-02-15", 4.0, "Food bank volunteering", model.EntryConfirmed),
			entry("log-002", "std-002", "gi-002", "2026-02-20", 3.5, "Tree planting at Central Park", model.EntryConfirmed),
			entry("log-003", "std-003", "hno-003", "2026-03-01", 5.0, "Homeless shelter support", model.EntryConfirmed),
			entry("log-004", "std-001", "csc-001", "2026-03-10", 3.0, "Community Garden Training Program", model.EntryPending),
			entry("log-005", "std-002", "gi-002", "2026-03-12", 2.5, "Harlem Distribution Center volunteering", model.EntryPending),
			entry("log-006", "std-003", "hno-003", "2026-03-14", 4.0, "After-School Academic Support", model.EntryPending),
			entry("log-007", "std-001", "csc-fall", "2025-10-15", 6.0, "Fall community event", model.EntryConfirmed),
		}
		for _, e := range entries {
			if err := tx.PutEntry(e); err != nil {
				return err
			}
		}

		requests := []model.VerificationRequest{
			{ID: "vr-001", EntryID: "log-004", StudentID: "std-001", ProgramID: "csc-001", Status: model.RequestAwaiting,
				NGOName: "Harlem Grown - Community Urban Farming Program", ActionDescription: "M-S Sustainable Harvesting"},
			{ID: "vr-002", EntryID: "log-005", StudentID: "std-002", ProgramID: "gi-002", Status: model.RequestAwaiting,
				NGOName: "The Food Bank for New York City - Harlem Distribution Center", ActionDescription: "W-S Mobile Pantry"},
			{ID: "vr-003", EntryID: "log-006", StudentID: "std-003", ProgramID: "hno-003", Status: model.RequestAwaiting,
				NGOName: "Chess Volunteers - After-School Academic Support", ActionDescription: "Tutoring assistance"},
		}
		for _, r := range requests {
			if err := tx.PutRequest(r); err != nil {
				return err
			}
		}
		return nil
	})
}
