package store

import (
	"sort"
	"sync"

	"myimpact/internal/model"
)

// Memory is the in-memory record store. It owns every entity instance;
// callers only ever receive copies.
//
// Writers are serialized by a single RWMutex. Readers share the read lock,
// so a View never observes a transaction half-applied.
type Memory struct {
	mu       sync.RWMutex
	terms    map[string]model.Term
	programs map[string]model.Program
	students map[string]model.Student
	entries  map[string]model.ServiceEntry
	requests map[string]model.VerificationRequest
	audit    []model.AuditEvent
	settings model.Settings
}

// NewMemory creates an empty store with the given settings.
func NewMemory(settings model.Settings) *Memory {
	return &Memory{
		terms:    make(map[string]model.Term),
		programs: make(map[string]model.Program),
		students: make(map[string]model.Student),
		entries:  make(map[string]model.ServiceEntry),
		requests: make(map[string]model.VerificationRequest),
		settings: settings,
	}
}

// View runs fn against a consistent read-only snapshot.
// The snapshot must not be retained after fn returns.
func (m *Memory) View(fn func(*Snapshot) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&Snapshot{m: m})
}

// Update runs fn inside a write transaction. Writes staged on the Tx are
// applied only when fn returns nil; otherwise the store is left untouched.
func (m *Memory) Update(fn func(*Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := newTx(m)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Snapshot exposes lookups and scans over the store while a lock is held.
type Snapshot struct {
	m *Memory
}

func (s *Snapshot) Term(id string) (model.Term, bool) {
	t, ok := s.m.terms[id]
	return t, ok
}

func (s *Snapshot) Program(id string) (model.Program, bool) {
	p, ok := s.m.programs[id]
	return p, ok
}

func (s *Snapshot) Student(id string) (model.Student, bool) {
	st, ok := s.m.students[id]
	if !ok {
		return model.Student{}, false
	}
	return cloneStudent(st), true
}

func (s *Snapshot) Entry(id string) (model.ServiceEntry, bool) {
	e, ok := s.m.entries[id]
	return e, ok
}

func (s *Snapshot) Request(id string) (model.VerificationRequest, bool) {
	r, ok := s.m.requests[id]
	return r, ok
}

func (s *Snapshot) Settings() model.Settings {
	return s.m.settings
}

// Terms returns all terms ordered by start date, then id.
func (s *Snapshot) Terms() []model.Term {
	out := make([]model.Term, 0, len(s.m.terms))
	for _, t := range s.m.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Programs returns programs matching keep (all when keep is nil), ordered by id.
func (s *Snapshot) Programs(keep func(model.Program) bool) []model.Program {
	out := []model.Program{}
	for _, p := range s.m.programs {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Students returns students matching keep, ordered by id.
func (s *Snapshot) Students(keep func(model.Student) bool) []model.Student {
	out := []model.Student{}
	for _, st := range s.m.students {
		if keep == nil || keep(st) {
			out = append(out, cloneStudent(st))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Entries returns service entries matching keep, ordered by id.
func (s *Snapshot) Entries(keep func(model.ServiceEntry) bool) []model.ServiceEntry {
	out := []model.ServiceEntry{}
	for _, e := range s.m.entries {
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Requests returns verification requests matching keep, ordered by id.
func (s *Snapshot) Requests(keep func(model.VerificationRequest) bool) []model.VerificationRequest {
	out := []model.VerificationRequest{}
	for _, r := range s.m.requests {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TermProgramIDs resolves the set of program ids belonging to termID.
// An empty termID selects every program.
func (s *Snapshot) TermProgramIDs(termID string) map[string]bool {
	ids := make(map[string]bool)
	for id, p := range s.m.programs {
		if termID == "" || p.TermID == termID {
			ids[id] = true
		}
	}
	return ids
}

// AuditEvents returns a copy of the audit log in insertion order.
func (s *Snapshot) AuditEvents() []model.AuditEvent {
	out := make([]model.AuditEvent, len(s.m.audit))
	copy(out, s.m.audit)
	return out
}

// AuditLen is the number of events appended so far.
func (s *Snapshot) AuditLen() int {
	return len(s.m.audit)
}

// Tx stages writes for Update. Point lookups see staged writes; scans on
// the embedded Snapshot see committed state only.
type Tx struct {
	*Snapshot

	terms    map[string]model.Term
	programs map[string]model.Program
	students map[string]model.Student
	entries  map[string]model.ServiceEntry
	requests map[string]model.VerificationRequest
	audit    []model.AuditEvent
	settings *model.Settings
}

func newTx(m *Memory) *Tx {
	return &Tx{
		Snapshot: &Snapshot{m: m},
		terms:    make(map[string]model.Term),
		programs: make(map[string]model.Program),
		students: make(map[string]model.Student),
		entries:  make(map[string]model.ServiceEntry),
		requests: make(map[string]model.VerificationRequest),
	}
}

func (tx *Tx) Term(id string) (model.Term, bool) {
	if t, ok := tx.terms[id]; ok {
		return t, true
	}
	return tx.Snapshot.Term(id)
}

func (tx *Tx) Program(id string) (model.Program, bool) {
	if p, ok := tx.programs[id]; ok {
		return p, true
	}
	return tx.Snapshot.Program(id)
}

func (tx *Tx) Student(id string) (model.Student, bool) {
	if st, ok := tx.students[id]; ok {
		return cloneStudent(st), true
	}
	return tx.Snapshot.Student(id)
}

func (tx *Tx) Entry(id string) (model.ServiceEntry, bool) {
	if e, ok := tx.entries[id]; ok {
		return e, true
	}
	return tx.Snapshot.Entry(id)
}

func (tx *Tx) Request(id string) (model.VerificationRequest, bool) {
	if r, ok := tx.requests[id]; ok {
		return r, true
	}
	return tx.Snapshot.Request(id)
}

func (tx *Tx) Settings() model.Settings {
	if tx.settings != nil {
		return *tx.settings
	}
	return tx.Snapshot.Settings()
}

// PutTerm stores a new term. Terms are immutable, so an existing id is rejected.
func (tx *Tx) PutTerm(t model.Term) error {
	if t.ID == "" {
		return &model.InvalidArgumentError{Field: "term_id", Reason: "required"}
	}
	if _, exists := tx.Term(t.ID); exists {
		return &model.InvalidArgumentError{Field: "term_id", Value: t.ID, Reason: "terms are immutable once created"}
	}
	tx.terms[t.ID] = t
	return nil
}

func (tx *Tx) PutProgram(p model.Program) error {
	if p.ID == "" {
		return &model.InvalidArgumentError{Field: "program_id", Reason: "required"}
	}
	if !p.Type.Valid() {
		return &model.InvalidArgumentError{Field: "type", Value: string(p.Type), Reason: "unknown program type"}
	}
	tx.programs[p.ID] = p
	return nil
}

func (tx *Tx) PutStudent(st model.Student) error {
	if st.ID == "" {
		return &model.InvalidArgumentError{Field: "student_id", Reason: "required"}
	}
	tx.students[st.ID] = cloneStudent(st)
	return nil
}

func (tx *Tx) PutEntry(e model.ServiceEntry) error {
	if e.ID == "" {
		return &model.InvalidArgumentError{Field: "log_id", Reason: "required"}
	}
	if e.Hours < 0 {
		return &model.InvalidArgumentError{Field: "hours", Reason: "must not be negative"}
	}
	if !e.Status.Valid() {
		return &model.InvalidArgumentError{Field: "status", Value: string(e.Status), Reason: "unknown entry status"}
	}
	tx.entries[e.ID] = e
	return nil
}

func (tx *Tx) PutRequest(r model.VerificationRequest) error {
	if r.ID == "" {
		return &model.InvalidArgumentError{Field: "request_id", Reason: "required"}
	}
	if !r.Status.Valid() {
		return &model.InvalidArgumentError{Field: "status", Value: string(r.Status), Reason: "unknown request status"}
	}
	tx.requests[r.ID] = r
	return nil
}

func (tx *Tx) PutSettings(s model.Settings) {
	tx.settings = &s
}

// AppendAudit stages an event and returns it with its sequence number set.
func (tx *Tx) AppendAudit(evt model.AuditEvent) model.AuditEvent {
	evt.Seq = int64(len(tx.Snapshot.m.audit) + len(tx.audit) + 1)
	tx.audit = append(tx.audit, evt)
	return evt
}

func (tx *Tx) commit() {
	m := tx.Snapshot.m
	for id, t := range tx.terms {
		m.terms[id] = t
	}
	for id, p := range tx.programs {
		m.programs[id] = p
	}
	for id, st := range tx.students {
		m.students[id] = st
	}
	for id, e := range tx.entries {
		m.entries[id] = e
	}
	for id, r := range tx.requests {
		m.requests[id] = r
	}
	m.audit = append(m.audit, tx.audit...)
	if tx.settings != nil {
		m.settings = *tx.settings
	}
}

func cloneStudent(st model.Student) model.Student {
	if st.ProgramIDs != nil {
		ids := make([]string, len(st.ProgramIDs))
		copy(ids, st.ProgramIDs)
		st.ProgramIDs = ids
	}
	return st
}
