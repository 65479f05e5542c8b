package events

import (
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueReported      EventType = "issue_reported"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueAssigned      EventType = "issue_assigned"
)

// Actor identifies the staff member behind an event. StaffID is nil for
// citizen intake.
type Actor struct {
	StaffID *string     `json:"staff_id,omitempty"`
	Role    domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   string    `json:"issue_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// IssueReportedPayload payload.
type IssueReportedPayload struct {
	Category string `json:"category"`
	Ward     string `json:"ward,omitempty"`
	Address  string `json:"address,omitempty"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	Category  string             `json:"category"`
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
	Note      string             `json:"note,omitempty"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	Category         string  `json:"category"`
	Address          string  `json:"address,omitempty"`
	AssigneeStaffID  string  `json:"assignee_staff_id"`
	AssigneeName     string  `json:"assignee_name"`
	PreviousAssignee *string `json:"previous_assignee,omitempty"`
}
