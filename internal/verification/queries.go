package verification

import (
	"myimpact/internal/model"
	"myimpact/internal/store"
)

// RequestView is a verification request enriched for the review queue.
type RequestView struct {
	model.VerificationRequest
	StudentName   string  `json:"student_name"`
	StudentAvatar string  `json:"student_avatar"`
	ProgramName   string  `json:"program_name"`
	Hours         float64 `json:"hours"`
	Date          string  `json:"date,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// ListRequests returns requests in termID (all terms when empty), optionally
// filtered by status. Dangling references render as "Unknown".
func (s *Service) ListRequests(termID string, status model.RequestStatus) ([]RequestView, error) {
	if status != "" && !status.Valid() {
		return nil, &model.InvalidArgumentError{Field: "status", Value: string(status), Reason: "unknown request status"}
	}
	var out []RequestView
	err := s.store.View(func(snap *store.Snapshot) error {
		scope := snap.TermProgramIDs(termID)
		reqs := snap.Requests(func(r model.VerificationRequest) bool {
			return (termID == "" || scope[r.ProgramID]) && (status == "" || r.Status == status)
		})
		out = make([]RequestView, 0, len(reqs))
		for _, r := range reqs {
			view := RequestView{VerificationRequest: r, StudentName: "Unknown", StudentAvatar: "?", ProgramName: "Unknown"}
			if st, ok := snap.Student(r.StudentID); ok {
				view.StudentName = st.Name
				view.StudentAvatar = st.Avatar
			}
			if p, ok := snap.Program(r.ProgramID); ok {
				view.ProgramName = p.Name
			}
			if e, ok := snap.Entry(r.EntryID); ok {
				view.Hours = e.Hours
				view.Date = e.Date
				view.Description = e.Description
			}
			out = append(out, view)
		}
		return nil
	})
	return out, err
}

// ListEntries returns service entries in termID, optionally filtered by status.
func (s *Service) ListEntries(termID string, status model.EntryStatus) ([]model.ServiceEntry, error) {
	if status != "" && !status.Valid() {
		return nil, &model.InvalidArgumentError{Field: "status", Value: string(status), Reason: "unknown entry status"}
	}
	var out []model.ServiceEntry
	err := s.store.View(func(snap *store.Snapshot) error {
		scope := snap.TermProgramIDs(termID)
		out = snap.Entries(func(e model.ServiceEntry) bool {
			return (termID == "" || scope[e.ProgramID]) && (status == "" || e.Status == status)
		})
		return nil
	})
	return out, err
}
