package model

import "time"

// ProgramType distinguishes campus-run programs from partner organizations.
type ProgramType string

const (
	ProgramCampus     ProgramType = "campus"
	ProgramNGOPartner ProgramType = "ngo_partner"
)

// Valid reports whether t is a known program type.
func (t ProgramType) Valid() bool {
	return t == ProgramCampus || t == ProgramNGOPartner
}

// EvidenceTier records whether hours are self-asserted or confirmed by the host organization.
type EvidenceTier string

const (
	EvidenceSelfReported EvidenceTier = "self_reported"
	EvidenceOrgConfirmed EvidenceTier = "org_confirmed"
)

// EntryStatus is the workflow state of a service entry.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryConfirmed EntryStatus = "confirmed"
	EntryRejected  EntryStatus = "rejected"
	EntryFlagged   EntryStatus = "flagged"
)

// Valid reports whether s is a known entry status.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryPending, EntryConfirmed, EntryRejected, EntryFlagged:
		return true
	}
	return false
}

// RequestStatus is the workflow state of a verification request.
// There is no flagged variant: flagging an entry moves its request to rejected.
type RequestStatus string

const (
	RequestAwaiting  RequestStatus = "awaiting_confirmation"
	RequestReady     RequestStatus = "ready_to_confirm"
	RequestConfirmed RequestStatus = "confirmed"
	RequestRejected  RequestStatus = "rejected"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestAwaiting, RequestReady, RequestConfirmed, RequestRejected:
		return true
	}
	return false
}

// ActorRole is the role an actor held when an audit event was written.
type ActorRole string

const (
	RoleUniversityAdmin ActorRole = "university_admin"
	RoleNGOPartner      ActorRole = "ngo_partner"
	RoleStudent         ActorRole = "student"
	RoleSystem          ActorRole = "system"
)

// Valid reports whether r is a known role.
func (r ActorRole) Valid() bool {
	switch r {
	case RoleUniversityAdmin, RoleNGOPartner, RoleStudent, RoleSystem:
		return true
	}
	return false
}

// EntityType names the kind of record an audit event refers to.
type EntityType string

const (
	EntityServiceLog          EntityType = "service_log"
	EntityVerificationRequest EntityType = "verification_request"
	EntityExport              EntityType = "export"
	EntitySettings            EntityType = "settings"
)

// AuditAction is the action an audit event records.
type AuditAction string

const (
	ActionConfirm AuditAction = "confirm"
	ActionReject  AuditAction = "reject"
	ActionFlag    AuditAction = "flag"
	ActionEdit    AuditAction = "edit"
	ActionExport  AuditAction = "export"
)

// RejectionReason is the closed set of reasons a reviewer may reject an entry for.
type RejectionReason string

const (
	ReasonNotEligible          RejectionReason = "not_eligible"
	ReasonInsufficientEvidence RejectionReason = "insufficient_evidence"
	ReasonSuspicious           RejectionReason = "suspicious"
	ReasonDuplicate            RejectionReason = "duplicate"
)

// Valid reports whether r belongs to the rejection enumeration.
func (r RejectionReason) Valid() bool {
	switch r {
	case ReasonNotEligible, ReasonInsufficientEvidence, ReasonSuspicious, ReasonDuplicate:
		return true
	}
	return false
}

// ParseRejectionReason converts raw input into a RejectionReason.
func ParseRejectionReason(raw string) (RejectionReason, error) {
	r := RejectionReason(raw)
	if !r.Valid() {
		return "", &InvalidArgumentError{Field: "reason", Value: raw, Reason: "not a recognised rejection reason"}
	}
	return r, nil
}

// Term is an academic period. Terms are immutable once stored.
type Term struct {
	ID            string  `json:"term_id"`
	Name          string  `json:"name"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	RequiredHours float64 `json:"required_hours,omitempty"`
}

// Program is a volunteering initiative within a term.
type Program struct {
	ID     string      `json:"program_id"`
	Name   string      `json:"name"`
	Type   ProgramType `json:"type"`
	TermID string      `json:"term_id"`
	Icon   string      `json:"icon"`
	// ActiveStudentsCount is a cached display counter. Enrollment derived
	// from Student.ProgramIDs is authoritative.
	ActiveStudentsCount int `json:"active_students_count"`
}

// Student is a participant enrolled in one or more programs.
type Student struct {
	ID         string   `json:"student_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	ProgramIDs []string `json:"program_ids"`
	Avatar     string   `json:"avatar,omitempty"`
}

// EnrolledIn reports whether the student belongs to programID.
func (s Student) EnrolledIn(programID string) bool {
	for _, id := range s.ProgramIDs {
		if id == programID {
			return true
		}
	}
	return false
}

// ServiceEntry is a single reported unit of service hours.
type ServiceEntry struct {
	ID           string       `json:"log_id"`
	StudentID    string       `json:"student_id"`
	ProgramID    string       `json:"program_id"`
	Date         string       `json:"date"`
	Hours        float64      `json:"hours"`
	Description  string       `json:"description"`
	EvidenceTier EvidenceTier `json:"evidence_tier"`
	Status       EntryStatus  `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// VerificationRequest tracks an entry through human review.
type VerificationRequest struct {
	ID                string        `json:"request_id"`
	EntryID           string        `json:"log_id"`
	StudentID         string        `json:"student_id"`
	ProgramID         string        `json:"program_id"`
	Status            RequestStatus `json:"status"`
	AssigneeID        string        `json:"assignee_admin_id,omitempty"`
	NGOName           string        `json:"ngo_name,omitempty"`
	ActionDescription string        `json:"action_description,omitempty"`
}

// AuditEvent is an immutable record of a state-changing action.
type AuditEvent struct {
	ID         string      `json:"event_id"`
	Seq        int64       `json:"seq"`
	ActorID    string      `json:"actor_id"`
	ActorRole  ActorRole   `json:"actor_role"`
	EntityType EntityType  `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Action     AuditAction `json:"action"`
	Timestamp  time.Time   `json:"timestamp"`
	Notes      string      `json:"notes"`
}

// Settings is the singleton display configuration.
type Settings struct {
	UniversityName string `json:"university_name"`
	DashboardTitle string `json:"dashboard_title"`
}

// Actor is the identity attributed on audit events.
type Actor struct {
	UserID string    `json:"user_id"`
	Name   string    `json:"name"`
	Role   ActorRole `json:"role"`
	Email  string    `json:"email,omitempty"`
}
