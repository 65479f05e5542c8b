package dto

import (
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// ReportIssueRequest is a citizen report from an intake channel.
type ReportIssueRequest struct {
	Category      string              `json:"category"`
	Description   string              `json:"description"`
	PhotoURL      string              `json:"photo_url"`
	VoiceNoteText string              `json:"voice_note_text"`
	Location      domain.Location     `json:"location"`
	Reporter      *domain.CitizenInfo `json:"reporter"`
	Attachments   []string            `json:"attachments"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status            domain.IssueStatus `json:"status"`
	Note              string             `json:"note"`
	ExpectedUpdatedAt *time.Time         `json:"expected_updated_at"`
}

// AssignRequest payload.
type AssignRequest struct {
	StaffID           string     `json:"staff_id"`
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

// NoteRequest payload.
type NoteRequest struct {
	Body string `json:"body"`
}

// IssueSummary is a table row.
type IssueSummary struct {
	ID           string             `json:"id"`
	Category     string             `json:"category"`
	Description  string             `json:"description"`
	Status       domain.IssueStatus `json:"status"`
	Ward         string             `json:"ward,omitempty"`
	Address      string             `json:"address,omitempty"`
	AssignedTo   *string            `json:"assigned_to,omitempty"`
	AssigneeName string             `json:"assignee_name"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// IssueDetailResponse provides full issue info.
type IssueDetailResponse struct {
	ID            string                `json:"id"`
	Category      string                `json:"category"`
	Description   string                `json:"description"`
	PhotoURL      string                `json:"photo_url,omitempty"`
	VoiceNoteText string                `json:"voice_note_text,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Location      domain.Location       `json:"location"`
	Status        domain.IssueStatus    `json:"status"`
	AssignedTo    *string               `json:"assigned_to,omitempty"`
	AssigneeName  string                `json:"assignee_name"`
	Reporter      *domain.CitizenInfo   `json:"reporter,omitempty"`
	Attachments   []string              `json:"attachments"`
	Timeline      []TimelineEntryView   `json:"timeline"`
	Notes         []domain.InternalNote `json:"notes"`
}

// TimelineEntryView renders a timeline entry with the actor's name.
type TimelineEntryView struct {
	domain.TimelineEntry
	ByName string `json:"by_name,omitempty"`
}

// MapPin is a marker on the issue map.
type MapPin struct {
	ID       string             `json:"id"`
	Category string             `json:"category"`
	Status   domain.IssueStatus `json:"status"`
	Lat      float64            `json:"lat"`
	Lng      float64            `json:"lng"`
	Ward     string             `json:"ward,omitempty"`
	Address  string             `json:"address,omitempty"`
}

// UnknownActor is shown for timeline actors that no longer resolve.
const UnknownActor = "Unknown"

// Unassigned is shown when an issue's assignee does not resolve.
const Unassigned = "Unassigned"

func assigneeName(id *string, names map[string]string) string {
	if id == nil {
		return Unassigned
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return Unassigned
}

// NewIssueSummary maps an issue for table views.
func NewIssueSummary(i domain.Issue, names map[string]string) IssueSummary {
	return IssueSummary{
		ID:           i.ID,
		Category:     i.Category,
		Description:  i.Description,
		Status:       i.Status,
		Ward:         i.Location.Ward,
		Address:      i.Location.Address,
		AssignedTo:   i.AssignedTo,
		AssigneeName: assigneeName(i.AssignedTo, names),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

// NewIssueDetail maps an issue for the detail drawer.
func NewIssueDetail(i domain.Issue, names map[string]string) IssueDetailResponse {
	timeline := make([]TimelineEntryView, 0, len(i.Timeline))
	for _, entry := range i.Timeline {
		view := TimelineEntryView{TimelineEntry: entry}
		if entry.By != nil {
			view.ByName = UnknownActor
			if name, ok := names[*entry.By]; ok {
				view.ByName = name
			}
		}
		timeline = append(timeline, view)
	}
	attachments := i.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	notes := i.Notes
	if notes == nil {
		notes = []domain.InternalNote{}
	}
	return IssueDetailResponse{
		ID:            i.ID,
		Category:      i.Category,
		Description:   i.Description,
		PhotoURL:      i.PhotoURL,
		VoiceNoteText: i.VoiceNoteText,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
		Location:      i.Location,
		Status:        i.Status,
		AssignedTo:    i.AssignedTo,
		AssigneeName:  assigneeName(i.AssignedTo, names),
		Reporter:      i.Reporter,
		Attachments:   attachments,
		Timeline:      timeline,
		Notes:         notes,
	}
}

// NewMapPin maps an issue to a marker.
func NewMapPin(i domain.Issue) MapPin {
	return MapPin{
		ID:       i.ID,
		Category: i.Category,
		Status:   i.Status,
		Lat:      i.Location.Lat,
		Lng:      i.Location.Lng,
		Ward:     i.Location.Ward,
		Address:  i.Location.Address,
	}
}
