package audit

import (
	"myimpact/internal/model"
	"myimpact/internal/store"
)

// DefaultLimit is used when a caller asks for a non-positive number of events.
const DefaultLimit = 100

// Log reads the audit trail held by the record store.
type Log struct {
	store *store.Memory
}

// NewLog creates a reader over s.
func NewLog(s *store.Memory) *Log {
	return &Log{store: s}
}

// List returns the most recent limit events, newest first.
func (l *Log) List(limit int) ([]model.AuditEvent, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var events []model.AuditEvent
	err := l.store.View(func(s *store.Snapshot) error {
		events = s.AuditEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]model.AuditEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

// Len is the number of events appended so far.
func (l *Log) Len() int {
	var n int
	_ = l.store.View(func(s *store.Snapshot) error {
		n = s.AuditLen()
		return nil
	})
	return n
}
