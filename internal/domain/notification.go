package domain

import "time"

// NotificationType enumerates feed event kinds.
type NotificationType string

const (
	NotificationNewIssue     NotificationType = "NEW_ISSUE"
	NotificationAssignment   NotificationType = "ASSIGNMENT"
	NotificationStatusUpdate NotificationType = "STATUS_UPDATE"
)

// NotificationItem is an entry in the staff notification feed.
type NotificationItem struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	Read      bool             `json:"read"`
	IssueID   *string          `json:"issue_id,omitempty"`
}
